package domain

// Card statuses
const (
	CardActive  = "ACTIVE"  // Card is usable
	CardBlocked = "BLOCKED" // Card is blocked
)

// Card Model. The Number column holds AES-GCM ciphertext; the card
// service encrypts on write and decrypts on read, so the plaintext
// number never reaches the store.
type Card struct {
	ID         uint    `gorm:"primaryKey" json:"id"`                       // Primary key
	OwnerID    uint    `gorm:"not null;index" json:"owner_id"`             // Foreign key to User
	Number     string  `gorm:"not null" json:"number"`                     // Card number (encrypted at rest)
	Expiration string  `gorm:"not null" json:"expiration"`                 // Expiration date, MM/YY
	Balance    float64 `gorm:"type:decimal(12,2);not null" json:"balance"` // Card balance
	Status     string  `gorm:"not null;default:ACTIVE" json:"status"`      // Status: ACTIVE or BLOCKED
	CreatedAt  int64   `gorm:"autoCreateTime:milli" json:"created_at"`     // Timestamp of creation in milliseconds
}

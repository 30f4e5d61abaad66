package service

import (
	"context" // Request-scoped deadlines for store calls
	"errors"  // Error kind matching

	"bank_cards/internal/domain" // Domain models
	"bank_cards/internal/utils"  // Card number cipher

	"gorm.io/gorm" // GORM ORM library
)

// CardService owns card lifecycle, role-scoped visibility and the
// balance transfer. It is the only code that touches the card number
// cipher: numbers are encrypted before they reach the store and
// decrypted right after they leave it.
//
// Every method takes the request context so store calls inherit the
// request deadline; a lock wait or store stall surfaces as
// context.DeadlineExceeded instead of hanging.
type CardService struct {
	db     *gorm.DB
	cipher *utils.CardCipher
}

// NewCardService builds a CardService over the given store and cipher.
func NewCardService(db *gorm.DB, cipher *utils.CardCipher) *CardService {
	return &CardService{db: db, cipher: cipher}
}

// decryptNumber swaps the stored ciphertext for the plaintext number.
func (s *CardService) decryptNumber(card *domain.Card) error {
	n, err := s.cipher.Decrypt(card.Number)
	if err != nil {
		return err
	}
	card.Number = n
	return nil
}

// DecryptNumbers decrypts the Number field of each card in place. It is
// the read half of the store boundary; callers that hold cards in their
// stored form (cache payloads) use it before serving them.
func (s *CardService) DecryptNumbers(cards []domain.Card) error {
	for i := range cards {
		if err := s.decryptNumber(&cards[i]); err != nil {
			return err
		}
	}
	return nil
}

// Create persists a new ACTIVE card for the given owner.
func (s *CardService) Create(ctx context.Context, number, expiration string, balance float64, ownerID uint) (*domain.Card, error) {
	if balance < 0 {
		return nil, ErrBadAmount
	}
	var owner domain.User
	if err := s.db.WithContext(ctx).First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	enc, err := s.cipher.Encrypt(number)
	if err != nil {
		return nil, err
	}
	card := domain.Card{
		OwnerID:    owner.ID,
		Number:     enc,
		Expiration: expiration,
		Balance:    balance,
		Status:     domain.CardActive, // New cards always start ACTIVE
	}
	if err := s.db.WithContext(ctx).Create(&card).Error; err != nil {
		return nil, err
	}
	card.Number = number // Return the plaintext, ciphertext stays in the store
	return &card, nil
}

// ListStoredForCaller returns the visible cards in their stored form:
// numbers are still ciphertext. This is what may be cached or persisted
// anywhere outside the store without leaking plaintext numbers.
//
// ADMIN sees every card, USER only owned cards. The filter is enforced
// here regardless of what the client asked for; this is the sole
// authorization-sensitive read path.
func (s *CardService) ListStoredForCaller(ctx context.Context, identity domain.Identity) ([]domain.Card, error) {
	var cards []domain.Card
	q := s.db.WithContext(ctx)
	if !identity.IsAdmin() {
		q = q.Where("owner_id = ?", identity.UserID)
	}
	if err := q.Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// ListForCaller is ListStoredForCaller with the numbers decrypted.
func (s *CardService) ListForCaller(ctx context.Context, identity domain.Identity) ([]domain.Card, error) {
	cards, err := s.ListStoredForCaller(ctx, identity)
	if err != nil {
		return nil, err
	}
	if err := s.DecryptNumbers(cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// Get returns one card if it would appear in ListForCaller; otherwise
// the card reads as not found, whether it exists or not.
func (s *CardService) Get(ctx context.Context, id uint, identity domain.Identity) (*domain.Card, error) {
	var card domain.Card
	if err := s.db.WithContext(ctx).First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	if !identity.IsAdmin() && card.OwnerID != identity.UserID {
		return nil, ErrCardNotFound
	}
	if err := s.decryptNumber(&card); err != nil {
		return nil, err
	}
	return &card, nil
}

// SetStatus sets the card status directly, in either direction,
// unconditionally. Re-activating an ACTIVE card is a no-op success.
// Returns the owner's user ID so callers can invalidate that owner's
// cached listing.
func (s *CardService) SetStatus(ctx context.Context, id uint, status string) (uint, error) {
	var card domain.Card
	if err := s.db.WithContext(ctx).First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCardNotFound
		}
		return 0, err
	}
	if err := s.db.WithContext(ctx).Model(&card).Update("status", status).Error; err != nil {
		return 0, err
	}
	return card.OwnerID, nil
}

// RequestBlock immediately blocks a card owned by the caller. There is
// no pending-approval state. A card the caller does not own reads as
// not found, same as the visibility rule.
func (s *CardService) RequestBlock(ctx context.Context, id, callerID uint) error {
	res := s.db.WithContext(ctx).Model(&domain.Card{}).
		Where("id = ? AND owner_id = ?", id, callerID).
		Update("status", domain.CardBlocked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

// Delete removes a card unconditionally, non-zero balance included.
// Returns the former owner's user ID for cache invalidation.
func (s *CardService) Delete(ctx context.Context, id uint) (uint, error) {
	var card domain.Card
	if err := s.db.WithContext(ctx).First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCardNotFound
		}
		return 0, err
	}
	if err := s.db.WithContext(ctx).Delete(&card).Error; err != nil {
		return 0, err
	}
	return card.OwnerID, nil
}

// Transfer atomically debits the source card and credits the target card
// by the same amount inside one transaction: either both updates commit
// or neither does.
//
// The two balance updates run in ascending card-id order so that two
// concurrent transfers touching the same pair in opposite directions
// acquire their row locks in the same order and cannot deadlock. The
// debit carries a balance guard so the balance can never be observed
// negative even under concurrent transfers from the same card.
//
// Returns the updated cards re-read inside the transaction, so the
// balances are the committed values even when a concurrent transfer
// touched the same cards. Numbers are decrypted for the caller.
func (s *CardService) Transfer(ctx context.Context, fromID, toID uint, amount float64) (*domain.Card, *domain.Card, error) {
	if amount <= 0 {
		return nil, nil, ErrBadAmount
	}
	if fromID == toID {
		return nil, nil, ErrSameCard
	}
	var from, to domain.Card
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&from, fromID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSourceCardNotFound
			}
			return err
		}
		if err := tx.First(&to, toID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTargetCardNotFound
			}
			return err
		}
		if from.Balance < amount {
			return ErrInsufficientFunds
		}

		debit := func(tx *gorm.DB) error {
			// Guarded debit: rows affected is zero when a concurrent
			// transfer drained the balance after the check above.
			res := tx.Model(&domain.Card{}).
				Where("id = ? AND balance >= ?", fromID, amount).
				Update("balance", gorm.Expr("balance - ?", amount))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientFunds
			}
			return nil
		}
		credit := func(tx *gorm.DB) error {
			return tx.Model(&domain.Card{}).
				Where("id = ?", toID).
				Update("balance", gorm.Expr("balance + ?", amount)).Error
		}

		// Fixed global lock order: lowest card id first
		steps := []func(*gorm.DB) error{debit, credit}
		if toID < fromID {
			steps[0], steps[1] = steps[1], steps[0]
		}
		for _, step := range steps {
			if err := step(tx); err != nil {
				return err
			}
		}

		// Re-read the committed state under the same locks
		if err := tx.First(&from, fromID).Error; err != nil {
			return err
		}
		return tx.First(&to, toID).Error
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.decryptNumber(&from); err != nil {
		return nil, nil, err
	}
	if err := s.decryptNumber(&to); err != nil {
		return nil, nil, err
	}
	return &from, &to, nil
}

package services

import (
	"vitalsin/internal/crypto"
	"vitalsin/internal/models"
)

// EncryptionService wraps the field cipher with domain-specific methods.
// Free-text a user writes (check-in notes, score explanations) is encrypted
// at rest; structured answers and numeric scores are not.
type EncryptionService struct {
	cipher *crypto.Cipher
}

func NewEncryptionService(key []byte) (*EncryptionService, error) {
	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

// EncryptCheckIn encrypts the notes field before storing in DB.
func (s *EncryptionService) EncryptCheckIn(c *models.CheckIn) error {
	if c.Notes == nil || *c.Notes == "" {
		return nil
	}
	enc, err := s.cipher.Encrypt(*c.Notes)
	if err != nil {
		return err
	}
	c.Notes = &enc
	return nil
}

// DecryptCheckIn decrypts the notes field after retrieving from DB.
func (s *EncryptionService) DecryptCheckIn(c *models.CheckIn) error {
	if c.Notes == nil || *c.Notes == "" {
		return nil
	}
	dec, err := s.cipher.Decrypt(*c.Notes)
	if err != nil {
		return err
	}
	c.Notes = &dec
	return nil
}

// EncryptScore encrypts the explanation before storing in DB.
func (s *EncryptionService) EncryptScore(sc *models.EnergyScore) error {
	if sc.Explanation == "" {
		return nil
	}
	enc, err := s.cipher.Encrypt(sc.Explanation)
	if err != nil {
		return err
	}
	sc.Explanation = enc
	return nil
}

// DecryptScore decrypts the explanation after retrieving from DB.
func (s *EncryptionService) DecryptScore(sc *models.EnergyScore) error {
	if sc.Explanation == "" {
		return nil
	}
	dec, err := s.cipher.Decrypt(sc.Explanation)
	if err != nil {
		return err
	}
	sc.Explanation = dec
	return nil
}

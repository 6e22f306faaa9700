package security

import "golang.org/x/crypto/bcrypt"

type BcryptService struct {
	cost int
}

func NewBcryptService() *BcryptService {
	return &BcryptService{cost: bcrypt.DefaultCost}
}

func (s *BcryptService) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	return string(bytes), err
}

func (s *BcryptService) Compare(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

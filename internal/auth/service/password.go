package service

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when the email is unknown so that a failed
// login costs the same either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-staff-user"), bcrypt.DefaultCost)

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func comparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

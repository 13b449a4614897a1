package password

import "golang.org/x/crypto/bcrypt"

const cost = 12

// Hash returns the bcrypt hash stored on the user row.
func Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify checks a password against its stored hash.
func Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

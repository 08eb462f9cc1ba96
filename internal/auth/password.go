package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when login targets an unknown email so that
// both failure paths pay the bcrypt cost. Hash of an unguessable sentinel.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// HashPassword hashes a plaintext password with the configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// CompareDummy burns one bcrypt comparison without revealing anything. Used
// to keep the unknown-email login path from returning faster than the
// wrong-password path.
func CompareDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plain))
}

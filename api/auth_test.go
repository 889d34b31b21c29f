package api

import (
	"testing"
	"time"

	"github.com/warp/timeclock-engine/payroll"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
	if CheckPassword("", "hunter2") {
		t.Error("empty hash accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	auth := NewAuth("test-secret", time.Hour)
	emp := payroll.Employee{ID: 7, Username: "dana", Role: payroll.RoleManager}

	token, err := auth.GenerateToken(emp)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.EmployeeID != 7 || claims.Username != "dana" || claims.Role != payroll.RoleManager {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// Another secret must not validate the token.
	other := NewAuth("different-secret", time.Hour)
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token validated under the wrong secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	auth := NewAuth("test-secret", -time.Minute)
	token, err := auth.GenerateToken(payroll.Employee{ID: 1, Username: "dana"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := auth.ValidateToken(token); err == nil {
		t.Error("expired token validated")
	}
}

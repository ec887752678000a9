package utils

import "testing"

func TestHashAndVerifyOTP(t *testing.T) {
	encoded, err := HashOTP("493027")
	if err != nil {
		t.Fatalf("HashOTP: %v", err)
	}

	if err := VerifyOTP("493027", encoded); err != nil {
		t.Errorf("VerifyOTP with correct code: %v", err)
	}
	if err := VerifyOTP("000000", encoded); err == nil {
		t.Error("VerifyOTP accepted a wrong code")
	}
	if err := VerifyOTP("493027", "not-a-hash"); err == nil {
		t.Error("VerifyOTP accepted a malformed hash")
	}
}

func TestHashOTPSalted(t *testing.T) {
	first, err := HashOTP("493027")
	if err != nil {
		t.Fatalf("HashOTP: %v", err)
	}
	second, err := HashOTP("493027")
	if err != nil {
		t.Fatalf("HashOTP: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same code must differ (random salt)")
	}
}

package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestValidatePhoneNumber(t *testing.T) {
	valid := []string{"+15551234567", "15551234567", "+4915123456789"}
	for _, phone := range valid {
		rec := httptest.NewRecorder()
		if !ValidatePhoneNumber(rec, phone) {
			t.Errorf("ValidatePhoneNumber(%q) = false, want true", phone)
		}
	}

	invalid := []string{"", "abc", "+0123456789", "123", "+1 555 123 4567", "+155512345678901234"}
	for _, phone := range invalid {
		rec := httptest.NewRecorder()
		if ValidatePhoneNumber(rec, phone) {
			t.Errorf("ValidatePhoneNumber(%q) = true, want false", phone)
		}
		if rec.Code != 400 {
			t.Errorf("ValidatePhoneNumber(%q) wrote status %d, want 400", phone, rec.Code)
		}
	}
}

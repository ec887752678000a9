package handlers

import (
	"net/http"
	"regexp"

	"splitmate/pkg/utils"
)

var phoneRegexp = regexp.MustCompile(`^\+?[1-9][0-9]{7,14}$`)

func ValidatePhoneNumber(w http.ResponseWriter, phone string) bool {
	if !phoneRegexp.MatchString(phone) {
		utils.WriteError(w, "invalid phone number format", http.StatusBadRequest)
		return false
	}
	return true
}

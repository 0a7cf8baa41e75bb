package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid_simple", "user@example.com", true},
		{"valid_subdomain", "user@mail.example.com", true},
		{"valid_plus", "user+tag@example.com", true},
		{"valid_dash", "user-name@example.com", true},
		{"valid_dot", "user.name@example.com", true},
		{"valid_numbers", "user123@example456.com", true},
		{"invalid_no_at", "userexample.com", false},
		{"invalid_no_domain", "user@", false},
		{"invalid_no_user", "@example.com", false},
		{"invalid_double_at", "user@@example.com", false},
		{"invalid_spaces", "user @example.com", false},
		{"invalid_no_tld", "user@example", false},
		{"too_long", "a" + string(make([]byte, 250)) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidEmail(tt.email)
			assert.Equal(t, tt.valid, result, "Email: %s", tt.email)
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name  string
		uuid  string
		valid bool
	}{
		{"valid_uuid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"valid_uppercase", "550E8400-E29B-41D4-A716-446655440000", true},
		{"valid_mixed", "550e8400-E29B-41d4-A716-446655440000", true},
		{"invalid_short", "550e8400-e29b-41d4-a716", false},
		{"invalid_long", "550e8400-e29b-41d4-a716-446655440000-extra", false},
		{"invalid_no_dashes", "550e8400e29b41d4a716446655440000", false},
		{"invalid_wrong_format", "550e8400-e29b-41d4a716-446655440000", false},
		{"invalid_letters", "ggge8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidUUID(tt.uuid)
			assert.Equal(t, tt.valid, result, "UUID: %s", tt.uuid)
		})
	}
}

func TestIsValidBizNumber(t *testing.T) {
	tests := []struct {
		name      string
		bizNumber string
		valid     bool
	}{
		{"valid_hyphenated", "123-45-67890", true},
		{"valid_plain", "1234567890", true},
		{"valid_partial_hyphen", "123-4567890", true},
		{"invalid_too_short", "123-45-6789", false},
		{"invalid_too_long", "123-45-678901", false},
		{"invalid_letters", "abc-de-fghij", false},
		{"invalid_empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidBizNumber(tt.bizNumber)
			assert.Equal(t, tt.valid, result, "BizNumber: %s", tt.bizNumber)
		})
	}
}

func TestIsValidLtcNumber(t *testing.T) {
	tests := []struct {
		name      string
		ltcNumber string
		valid     bool
	}{
		{"valid", "L1234567890", true},
		{"valid_zeroes", "L0000000000", true},
		{"invalid_lowercase_prefix", "l1234567890", false},
		{"invalid_no_prefix", "1234567890", false},
		{"invalid_short", "L123456789", false},
		{"invalid_long", "L12345678901", false},
		{"invalid_letters_in_digits", "L12345678AB", false},
		{"invalid_empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidLtcNumber(tt.ltcNumber)
			assert.Equal(t, tt.valid, result, "LtcNumber: %s", tt.ltcNumber)
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
		errMsg   string
	}{
		{"valid_strong", "MyP@ssw0rd!", true, ""},
		{"valid_complex", "Tr0ng!Pass#2024", true, ""},
		{"too_short", "Pass1!", false, "at least 8 characters"},
		{"too_long", "MyP@ss" + string(make([]byte, 125)), false, "at most 128 characters"},
		{"no_uppercase", "myp@ssw0rd!", false, "uppercase letter"},
		{"no_lowercase", "MYP@SSW0RD!", false, "lowercase letter"},
		{"no_number", "MyPassword!", false, "number"},
		{"no_special", "MyPassword1", false, "special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := IsValidPassword(tt.password)
			assert.Equal(t, tt.valid, valid, "Password: %s", tt.password)
			if !valid {
				assert.Contains(t, msg, tt.errMsg)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean_text", "Hello World", "Hello World"},
		{"null_bytes", "Hello\x00World", "HelloWorld"},
		{"control_chars", "Hello\x01\x02World", "HelloWorld"},
		{"keep_newlines", "Hello\nWorld", "Hello\nWorld"},
		{"keep_tabs", "Hello\tWorld", "Hello\tWorld"},
		{"keep_carriage_return", "Hello\rWorld", "Hello\rWorld"},
		{"mixed", "Hello\x00\x01\nWorld\t!", "Hello\nWorld\t!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeString(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no_special", "Hello World", "Hello World"},
		{"ampersand", "Ben & Jerry", "Ben &amp; Jerry"},
		{"less_than", "<script>", "&lt;script&gt;"},
		{"greater_than", "a > b", "a &gt; b"},
		{"double_quote", `Say "Hello"`, "Say &quot;Hello&quot;"},
		{"single_quote", "It's fine", "It&#39;s fine"},
		{"all_special", `<a href="test">&</a>`, "&lt;a href=&quot;test&quot;&gt;&amp;&lt;/a&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EscapeHTML(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"shorter_than_max", "Hello", 10, "Hello"},
		{"equal_to_max", "Hello", 5, "Hello"},
		{"longer_than_max", "Hello World", 5, "Hello"},
		{"empty", "", 10, ""},
		{"zero_max", "Hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateString(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, result)
		})
	}
}

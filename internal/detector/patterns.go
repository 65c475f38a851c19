package detector

import (
	"regexp"
	"strconv"
	"strings"
)

// Finding types produced by the default rules.
const (
	TypeEmail        = "EMAIL"
	TypePhone        = "PHONE"
	TypeSSN          = "SSN"
	TypeCreditCard   = "CREDIT_CARD"
	TypeIPv4         = "IPV4"
	TypeIBAN         = "IBAN"
	TypeAWSAccessKey = "AWS_ACCESS_KEY"
	TypePrivateKey   = "PRIVATE_KEY"
)

// Detection methods reported on findings.
const (
	MethodRegex         = "regex"
	MethodRegexLuhn     = "regex+luhn"
	MethodRegexChecksum = "regex+checksum"
)

// RegexRule defines a rule for detecting sensitive data.
type RegexRule struct {
	Type        string
	Description string
	Regex       *regexp.Regexp
	// Validate optionally confirms a candidate match; nil accepts all.
	Validate func(match string) bool
	Method   string
}

// DefaultRules is the list of built-in PII patterns.
var DefaultRules = []RegexRule{
	{
		Type:        TypeEmail,
		Description: "Email address",
		Regex:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Method:      MethodRegex,
	},
	{
		Type:        TypePhone,
		Description: "North American style phone number",
		Regex:       regexp.MustCompile(`(?:\+\d{1,3}[\s.-]?)?\(?\b[2-9]\d{2}\)?[\s.-]\d{3}[\s.-]\d{4}\b`),
		Method:      MethodRegex,
	},
	{
		Type:        TypeSSN,
		Description: "US social security number",
		Regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		Validate:    validSSN,
		Method:      MethodRegex,
	},
	{
		Type:        TypeCreditCard,
		Description: "Payment card number",
		Regex:       regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`),
		Validate:    validLuhn,
		Method:      MethodRegexLuhn,
	},
	{
		Type:        TypeIPv4,
		Description: "IPv4 address",
		Regex:       regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\b`),
		Method:      MethodRegex,
	},
	{
		Type:        TypeIBAN,
		Description: "International bank account number",
		Regex:       regexp.MustCompile(`\b[A-Z]{2}\d{2}(?: ?[A-Z0-9]{4}){2,7}(?: ?[A-Z0-9]{1,3})?\b`),
		Validate:    validIBAN,
		Method:      MethodRegexChecksum,
	},
	{
		Type:        TypeAWSAccessKey,
		Description: "AWS Access Key ID",
		Regex:       regexp.MustCompile(`\b(AKIA[0-9A-Z]{16})\b`),
		Method:      MethodRegex,
	},
	{
		Type:        TypePrivateKey,
		Description: "Private key header",
		Regex:       regexp.MustCompile(`(-----BEGIN(?: [A-Z]+)? PRIVATE KEY-----)`),
		Method:      MethodRegex,
	},
}

func validSSN(match string) bool {
	parts := strings.Split(match, "-")
	if len(parts) != 3 {
		return false
	}
	area, group, serial := parts[0], parts[1], parts[2]
	if area == "000" || area == "666" || area[0] == '9' {
		return false
	}
	return group != "00" && serial != "0000"
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validLuhn(match string) bool {
	digits := digitsOnly(match)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// validIBAN applies the ISO 13616 mod-97 check.
func validIBAN(match string) bool {
	iban := strings.ReplaceAll(match, " ", "")
	if len(iban) < 15 || len(iban) > 34 {
		return false
	}

	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for _, r := range rearranged {
		var chunk string
		switch {
		case r >= '0' && r <= '9':
			chunk = string(r)
		case r >= 'A' && r <= 'Z':
			chunk = strconv.Itoa(int(r-'A') + 10)
		default:
			return false
		}
		for _, c := range chunk {
			remainder = (remainder*10 + int(c-'0')) % 97
		}
	}
	return remainder == 1
}

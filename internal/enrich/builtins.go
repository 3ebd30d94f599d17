package enrich

import (
	"strings"
	"unicode"

	"cartridge-engine/internal/common"
)

// Built-in bean names.
const (
	PaymentFunctions = "paymentEnrichmentFunctions"
	ExampleFunctions = "exampleEnrichmentFunctions"
)

// Risk thresholds used by CalculateRiskScore.
const (
	highValueThreshold     = 10000.0
	veryHighValueThreshold = 50000.0
	mediumValueThreshold   = 5000.0
)

// RegisterBuiltins adds the built-in payment and example functions to r.
func RegisterBuiltins(r *Registry) {
	r.Register(PaymentFunctions, "calculateRiskScore", CalculateRiskScore)
	r.Register(PaymentFunctions, "enrichPayerDetails", EnrichPayerDetails)
	r.Register(PaymentFunctions, "normalizeIban", NormalizeIban)
	r.Register(ExampleFunctions, "bumpAmount", BumpAmount)
}

// Builtins returns a registry holding only the built-in functions.
func Builtins() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)

	return r
}

// CalculateRiskScore scores a payment between 0 and 100 from its amount,
// payment type, payee bank code and new-payee flag, and returns riskScore
// and riskLevel (LOW, MEDIUM, HIGH or CRITICAL).
func CalculateRiskScore(body map[string]any) (any, error) {
	score := 0

	if amount, ok := common.ToNumber(body["amount"]); ok {
		switch {
		case amount >= veryHighValueThreshold:
			score += 40
		case amount >= highValueThreshold:
			score += 25
		case amount >= mediumValueThreshold:
			score += 10
		}
	}

	paymentType, _ := body["paymentType"].(string)

	switch {
	case strings.EqualFold(paymentType, "WIRE"):
		score += 20
	case strings.EqualFold(paymentType, "INSTANT"):
		score += 15
	case strings.EqualFold(paymentType, "ACH"):
		score += 5
	}

	// An 11 character BIC points at a cross-border payee.
	if payee, ok := body["payee"].(map[string]any); ok {
		if code, ok := payee["bankCode"].(string); ok && len(code) == 11 {
			score += 15
		}
	}

	if isTrue(body["newPayee"]) {
		score += 10
	}

	score = min(score, 100)

	return map[string]any{
		"riskScore": score,
		"riskLevel": riskLevel(score),
	}, nil
}

func riskLevel(score int) string {
	switch {
	case score >= 70:
		return "CRITICAL"
	case score >= 50:
		return "HIGH"
	case score >= 25:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func isTrue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	default:
		return false
	}
}

// EnrichPayerDetails adds payerDetails for payments carrying a
// payer.customerId.
func EnrichPayerDetails(body map[string]any) (any, error) {
	result := map[string]any{}

	payer, ok := body["payer"].(map[string]any)
	if !ok {
		return result, nil
	}

	customerID, _ := payer["customerId"].(string)
	if common.IsBlank(customerID) {
		return result, nil
	}

	result["payerDetails"] = map[string]any{
		"customerTier": "PREMIUM",
		"kycVerified":  true,
		"accountAge":   "5 years",
	}

	return result, nil
}

// NormalizeIban strips whitespace from payee.accountNumber and upper-cases
// it. The result is keyed "payee.normalizedAccount" at the top level.
func NormalizeIban(body map[string]any) (any, error) {
	result := map[string]any{}

	payee, ok := body["payee"].(map[string]any)
	if !ok {
		return result, nil
	}

	account, ok := payee["accountNumber"].(string)
	if !ok {
		return result, nil
	}

	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return unicode.ToUpper(r)
	}, account)

	result["payee.normalizedAccount"] = normalized

	return result, nil
}

// BumpAmount turns an amount of 50 into 100. Other amounts are left alone.
func BumpAmount(body map[string]any) (any, error) {
	amount, ok := body["amount"]
	if !ok || amount == nil {
		return map[string]any{}, nil
	}

	s := strings.TrimSpace(common.Stringify(amount))
	if s == "50" || s == "50.0" {
		return map[string]any{"amount": 100}, nil
	}

	return map[string]any{}, nil
}

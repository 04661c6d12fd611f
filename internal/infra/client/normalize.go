package client

import (
	"fmt"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
)

// The lookup API answers in at least two dialects: Portuguese column names
// and English ones. Each logical field maps to an ordered alias list; the
// first non-empty value wins. The order is part of the contract — tests pin
// it — so it lives here as data rather than inline conditionals.
var personAliases = map[string][]string{
	"name":       {"nome", "name"},
	"birth_date": {"nascimento", "birthDate"},
	"mother":     {"mae", "mother"},
	"street":     {"logradouro", "address"},
	"number":     {"numero", "number"},
	"complement": {"complemento", "complement"},
	"district":   {"bairro", "district"},
	"city":       {"cidade", "city"},
	"state":      {"uf", "state"},
	"zip_code":   {"cep", "zipCode"},
	"rg":         {"rg"},
	"voter_id":   {"tituloEleitor", "voterTitle"},
}

var listAliases = map[string][]string{
	"phones": {"telefones", "phones"},
	"emails": {"emails"},
}

// normalizePerson maps a raw upstream payload into the fixed Person shape.
// The CPF echoed by the upstream is preferred, falling back to the queried
// digits.
func normalizePerson(cpf string, payload map[string]any) *domain.Person {
	cpfValue := pickString(payload, []string{"cpf"})
	if cpfValue == "" {
		cpfValue = cpf
	}

	return &domain.Person{
		CPF:        domain.FormatCPF(cpfValue),
		Name:       pick(payload, "name"),
		BirthDate:  pick(payload, "birth_date"),
		MotherName: pick(payload, "mother"),
		Address: domain.Address{
			Street:     pick(payload, "street"),
			Number:     pick(payload, "number"),
			Complement: pick(payload, "complement"),
			District:   pick(payload, "district"),
			City:       pick(payload, "city"),
			State:      pick(payload, "state"),
			ZipCode:    pick(payload, "zip_code"),
		},
		Phones:    pickStrings(payload, listAliases["phones"]),
		Emails:    pickStrings(payload, listAliases["emails"]),
		RG:        pick(payload, "rg"),
		VoterID:   pick(payload, "voter_id"),
		QueriedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
}

func pick(payload map[string]any, field string) string {
	return pickString(payload, personAliases[field])
}

func pickString(payload map[string]any, aliases []string) string {
	for _, alias := range aliases {
		switch v := payload[alias].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			// Some providers send numeric fields (house number, zip) as JSON
			// numbers.
			return trimFloat(v)
		}
	}
	return ""
}

func pickStrings(payload map[string]any, aliases []string) []string {
	for _, alias := range aliases {
		items, ok := payload[alias].([]any)
		if !ok || len(items) == 0 {
			continue
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			switch v := item.(type) {
			case string:
				out = append(out, v)
			case float64:
				out = append(out, trimFloat(v))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

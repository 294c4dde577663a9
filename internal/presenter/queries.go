package presenter

import (
	"fmt"
	"time"
)

// GraphQL documents sent through the gateway
const (
	userInfoQuery = `{
  user {
    attrs
  }
}`

	transactionsQuery = `{
  transaction {
    type
    amount
    path
    createdAt
    object {
      name
    }
  }
}`

	auditsQuery = `{
  user {
    auditRatio
    audits_aggregate(where: {closureType: {_eq: succeeded}}) {
      aggregate {
        count
      }
    }
    failed_audits: audits_aggregate(where: {closureType: {_eq: failed}}) {
      aggregate {
        count
      }
    }
  }
}`
)

// Attrs is the free-form attribute object of a user
type Attrs map[string]any

// String returns the attribute as text, "" when missing or null
func (a Attrs) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(v)
	}
}

// Bool reports whether the attribute is true (or the string "true")
func (a Attrs) Bool(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

type userInfoResult struct {
	User []struct {
		Attrs Attrs `json:"attrs"`
	} `json:"user"`
}

// Transaction is one XP (or other) ledger entry
type Transaction struct {
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	Path      string  `json:"path"`
	CreatedAt string  `json:"createdAt"`
	Object    struct {
		Name string `json:"name"`
	} `json:"object"`
}

// Time parses CreatedAt; the zero time is returned for bad input
func (t Transaction) Time() time.Time {
	ts, err := time.Parse(time.RFC3339Nano, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

type transactionsResult struct {
	Transaction []Transaction `json:"transaction"`
}

type aggregateCount struct {
	Aggregate struct {
		Count int `json:"count"`
	} `json:"aggregate"`
}

type auditsResult struct {
	User []struct {
		AuditRatio      float64        `json:"auditRatio"`
		AuditsAggregate aggregateCount `json:"audits_aggregate"`
		FailedAudits    aggregateCount `json:"failed_audits"`
	} `json:"user"`
}

package session

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"rental-inspection-backend/internal/questionnaire"
)

const (
	DefaultMerchantID = "default"
	DefaultStoreID    = "default"
)

// Context identifies the order an inspection belongs to. The language is
// fixed when the context is created and only changes through SetLanguage.
type Context struct {
	OrderID    string
	MerchantID string
	StoreID    string
	language   questionnaire.Language
}

func NewContext(orderID, merchantID, storeID string, lang questionnaire.Language) Context {
	return Context{
		OrderID:    orderID,
		MerchantID: merchantID,
		StoreID:    storeID,
		language:   questionnaire.ParseLanguage(string(lang)),
	}
}

// FromQuery reads the id, mid, stid and lang parameters. Missing values fall
// back to a generated order id, the default merchant and store, and German.
func FromQuery(q url.Values, now time.Time) Context {
	return NewContext(
		valueOr(q.Get("id"), DefaultOrderID(now)),
		valueOr(q.Get("mid"), DefaultMerchantID),
		valueOr(q.Get("stid"), DefaultStoreID),
		questionnaire.Language(q.Get("lang")),
	)
}

// DefaultOrderID is the order id used when none is given.
func DefaultOrderID(now time.Time) string {
	return fmt.Sprintf("ORDER-%d", now.UnixMilli())
}

func (c Context) Language() questionnaire.Language {
	if c.language == "" {
		return questionnaire.LanguageDE
	}
	return c.language
}

func (c *Context) SetLanguage(lang questionnaire.Language) {
	c.language = questionnaire.ParseLanguage(string(lang))
}

func valueOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

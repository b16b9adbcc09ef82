package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// fieldKind is the JSON type an order field must have.
type fieldKind string

const (
	kindString  fieldKind = "string"
	kindInteger fieldKind = "integer"
	kindNumber  fieldKind = "number"
)

// orderSchema lists the order fields in output and validation order.
var orderSchema = []struct {
	name string
	kind fieldKind
}{
	{"vendor", kindString},
	{"product_id", kindString},
	{"quantity", kindInteger},
	{"price_per_unit", kindNumber},
	{"delivery_date", kindString},
}

// Order is a processed order. Values are passed through exactly as received,
// wrong-typed ones included; absent fields are nil.
type Order struct {
	Vendor       any `json:"vendor"`
	ProductID    any `json:"product_id"`
	Quantity     any `json:"quantity"`
	PricePerUnit any `json:"price_per_unit"`
	DeliveryDate any `json:"delivery_date"`
}

func (o *Order) set(name string, v any) {
	switch name {
	case "vendor":
		o.Vendor = v
	case "product_id":
		o.ProductID = v
	case "quantity":
		o.Quantity = v
	case "price_per_unit":
		o.PricePerUnit = v
	case "delivery_date":
		o.DeliveryDate = v
	}
}

// OrderResult is the output of the order extractor.
type OrderResult struct {
	ProcessedOrder   Order    `json:"processed_order"`
	ValidationIssues []string `json:"validation_issues"`
	SessionID        string   `json:"session_id"`
}

type orderPayload struct {
	ProcessedOrder   Order    `json:"processed_order"`
	ValidationIssues []string `json:"validation_issues"`
}

// ExtractOrder validates fields against the order schema. Validation never
// fails the call: problems are reported in ValidationIssues. The only error
// is a failed log write.
func (e *Extractor) ExtractOrder(fields map[string]any, opts Options) (OrderResult, error) {
	order, issues := ValidateOrder(fields)
	res := OrderResult{
		ProcessedOrder:   order,
		ValidationIssues: issues,
		SessionID:        opts.conversationID(),
	}

	payload := orderPayload{ProcessedOrder: res.ProcessedOrder, ValidationIssues: res.ValidationIssues}
	if err := e.append("JSON", opts.Source, res.SessionID, payload); err != nil {
		return OrderResult{}, err
	}
	return res, nil
}

// ValidateOrder checks each schema field of fields in order and returns the
// processed order with its issues. A JSON null counts as missing.
func ValidateOrder(fields map[string]any) (Order, []string) {
	var order Order
	issues := []string{}

	for _, f := range orderSchema {
		v, ok := fields[f.name]
		if !ok || v == nil {
			issues = append(issues, "Required field missing: "+f.name)
			continue
		}
		order.set(f.name, v)
		if !hasKind(v, f.kind) {
			issues = append(issues, fmt.Sprintf("Type mismatch for %s: need %s, received %s", f.name, f.kind, jsonType(v)))
		}
	}
	return order, issues
}

func hasKind(v any, want fieldKind) bool {
	switch want {
	case kindString:
		_, ok := v.(string)
		return ok
	case kindInteger:
		return jsonType(v) == "integer"
	case kindNumber:
		t := jsonType(v)
		return t == "integer" || t == "number"
	}
	return false
}

// jsonType names the JSON type of a decoded value. Numbers with no
// fractional part are reported as integer.
func jsonType(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return "integer"
		}
		return "number"
	case float64:
		return floatType(x)
	case float32:
		return floatType(float64(x))
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func floatType(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return "integer"
	}
	return "number"
}

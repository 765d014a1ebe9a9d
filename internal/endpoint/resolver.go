// Package endpoint maps logical catalog operations to ordered candidate URLs.
//
// The storefront backend has been deployed behind several reverse-proxy
// configurations over time, so a single operation may be reachable under a
// versioned prefix, no prefix, or an accidentally doubled prefix, and a
// known-good fallback origin exists for when the primary origin is down.
// Resolution is pure and deterministic: the order never changes based on
// runtime history.
package endpoint

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind identifies a logical catalog operation.
type Kind string

// Logical operations the client performs.
const (
	KindListCategories Kind = "list_categories"
	KindCreateCategory Kind = "create_category"
	KindListProducts   Kind = "list_products"
	KindCreateProduct  Kind = "create_product"
	KindUpdateProduct  Kind = "update_product"
	KindUploadAssets   Kind = "upload_assets"
)

// Operation is one logical request, including the entity id for operations
// that address a single record.
type Operation struct {
	Kind     Kind
	EntityID string
}

// String returns a stable label for logs and metrics.
func (o Operation) String() string {
	if o.EntityID == "" {
		return string(o.Kind)
	}
	return fmt.Sprintf("%s:%s", o.Kind, o.EntityID)
}

// Prefix is the canonical versioned API prefix.
const Prefix = "/api/v1"

// Origins carries the two origins candidate URLs are built from.
type Origins struct {
	// Base is the origin the deployment is configured to talk to.
	Base string
	// Fallback is a known-good absolute origin tried last.
	Fallback string
}

func (o Operation) path() (string, error) {
	switch o.Kind {
	case KindListCategories, KindCreateCategory:
		return "/categories", nil
	case KindListProducts, KindCreateProduct:
		return "/products", nil
	case KindUpdateProduct:
		if o.EntityID == "" {
			return "", fmt.Errorf("update_product requires an entity id")
		}
		return "/products/" + url.PathEscape(o.EntityID), nil
	case KindUploadAssets:
		return "/uploads", nil
	default:
		return "", fmt.Errorf("unknown operation kind %q", o.Kind)
	}
}

// Resolve returns the candidate URLs for op in fixed priority order:
//
//  1. base origin, canonical versioned prefix
//  2. base origin, no prefix (pre-versioning compatibility)
//  3. base origin, doubled prefix (misconfigured proxy strips nothing)
//  4. fallback origin, canonical prefix
//
// Candidates for absent origins are omitted; resolution itself does no I/O.
func Resolve(op Operation, origins Origins) ([]string, error) {
	p, err := op.path()
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(origins.Base, "/")
	fallback := strings.TrimRight(origins.Fallback, "/")

	var out []string
	if base != "" {
		out = append(out,
			base+Prefix+p,
			base+p,
			base+Prefix+Prefix+p,
		)
	}
	if fallback != "" && fallback != base {
		out = append(out, fallback+Prefix+p)
	}
	return out, nil
}

package submit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
)

// payload is an assembled multipart/form-data body plus its content type
// (which carries the boundary).
type payload struct {
	body        []byte
	contentType string
}

// buildEntityPayload assembles the canonical product create/update body:
// scalar fields, serialized dimensions, the existing-image reference list,
// raw image parts for candidates not uploaded out of band, the
// replace-vs-append flag, and the in-body admin token.
func buildEntityPayload(form FormState, existingRefs []string, fresh []*catalog.UploadCandidate, adminToken string) (payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":        form.Name,
		"description": form.Description,
		"price":       formatPrice(form.Price),
		"stock":       strconv.Itoa(form.Stock),
		"category":    form.CategoryID,
		"featured":    strconv.FormatBool(form.Featured),
	}
	if form.Material != "" {
		fields["material"] = form.Material
	}
	if form.Color != "" {
		fields["color"] = form.Color
	}
	if form.DiscountPrice != nil {
		fields["discountPrice"] = formatPrice(*form.DiscountPrice)
	}
	if form.Dimensions != nil {
		dims, err := json.Marshal(form.Dimensions)
		if err != nil {
			return payload{}, fmt.Errorf("marshal dimensions: %w", err)
		}
		fields["dimensions"] = string(dims)
	}
	if form.ReplaceImages {
		fields["replaceImages"] = "true"
	}
	if adminToken != "" {
		fields["adminToken"] = adminToken
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return payload{}, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if len(existingRefs) > 0 {
		refs, err := json.Marshal(existingRefs)
		if err != nil {
			return payload{}, fmt.Errorf("marshal existing images: %w", err)
		}
		if err := w.WriteField("existingImages", string(refs)); err != nil {
			return payload{}, fmt.Errorf("write existingImages: %w", err)
		}
	}

	if err := writeImageParts(w, fresh); err != nil {
		return payload{}, err
	}

	if err := w.Close(); err != nil {
		return payload{}, fmt.Errorf("close multipart writer: %w", err)
	}
	return payload{body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

// buildAssetPayload assembles the phase-one body: only raw image parts and
// the in-body admin token.
func buildAssetPayload(fresh []*catalog.UploadCandidate, adminToken string) (payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if adminToken != "" {
		if err := w.WriteField("adminToken", adminToken); err != nil {
			return payload{}, fmt.Errorf("write adminToken: %w", err)
		}
	}
	if err := writeImageParts(w, fresh); err != nil {
		return payload{}, err
	}
	if err := w.Close(); err != nil {
		return payload{}, fmt.Errorf("close multipart writer: %w", err)
	}
	return payload{body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

func writeImageParts(w *multipart.Writer, fresh []*catalog.UploadCandidate) error {
	for _, c := range fresh {
		part, err := w.CreateFormFile("images", c.Name)
		if err != nil {
			return fmt.Errorf("create image part %s: %w", c.Name, err)
		}
		if _, err := part.Write(c.Data); err != nil {
			return fmt.Errorf("write image part %s: %w", c.Name, err)
		}
	}
	return nil
}

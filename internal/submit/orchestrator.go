// Package submit orchestrates catalog create/update submissions.
//
// A submission is a small state machine:
//
//	Idle -> Validating -> [UploadingAssets -> AssetsUploaded ->] SubmittingEntity -> Succeeded
//
// with two distinct failure exits. Failed means nothing was persisted and
// the whole submission is safe to retry. PartialFailure means the asset
// upload phase succeeded but the entity mutation did not: the uploaded
// assets are stored server-side with no owning entity, and blindly
// retrying would upload them again. The two must never be conflated.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
	"github.com/Avinash9608/Furniture-sub006/internal/endpoint"
	"github.com/Avinash9608/Furniture-sub006/internal/executor"
	"github.com/Avinash9608/Furniture-sub006/internal/logging"
	"github.com/Avinash9608/Furniture-sub006/internal/metrics"
)

// State is a submission lifecycle state.
type State string

// Submission states.
const (
	StateIdle             State = "idle"
	StateValidating       State = "validating"
	StateUploadingAssets  State = "uploading_assets"
	StateAssetsUploaded   State = "assets_uploaded"
	StateSubmittingEntity State = "submitting_entity"
	StateSucceeded        State = "succeeded"
	StateFailed           State = "failed"
	StatePartialFailure   State = "partial_failure"
)

// Executor is the slice of the resilient executor the orchestrator needs.
type Executor interface {
	Execute(ctx context.Context, operation string, candidates []string, spec executor.RequestSpec) (executor.Response, error)
}

// Dimensions is the product dimension triple, serialized as a JSON string
// field in the multipart payload.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FormState is the scalar form input for one product create or update.
// An empty ProductID means create.
type FormState struct {
	ProductID     string
	Name          string
	Description   string
	Price         float64
	Stock         int
	CategoryID    string
	Featured      bool
	Material      string
	Color         string
	Dimensions    *Dimensions
	DiscountPrice *float64
	ReplaceImages bool
}

// FieldError is one per-field validation failure, rendered inline by the
// caller without any network round trip.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError aggregates every failing field.
type ValidationError struct {
	Fields []FieldError
}

// Error lists the failing fields.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %v", names)
}

// SubmissionError is a terminal submission failure. State is either
// StateFailed or StatePartialFailure; UploadedRefs carries the persisted
// asset references when State is StatePartialFailure so an operator can
// link or clean them up.
type SubmissionError struct {
	State        State
	UploadedRefs []string
	Err          error
}

// Error describes the failure and, for partial failures, the orphans.
func (e *SubmissionError) Error() string {
	if e.State == StatePartialFailure {
		return fmt.Sprintf("entity submission failed after %d asset(s) were uploaded (orphaned, not retried): %v", len(e.UploadedRefs), e.Err)
	}
	return fmt.Sprintf("submission failed: %v", e.Err)
}

// Unwrap exposes the underlying cause.
func (e *SubmissionError) Unwrap() error { return e.Err }

// Config wires the orchestrator to a deployment.
type Config struct {
	Origins endpoint.Origins
	// SeparateAssetUpload selects the two-phase flow: binaries go to the
	// upload endpoint first and the entity mutation references them.
	SeparateAssetUpload bool
	// AdminToken, when set, is echoed in-body for endpoints without
	// header support and sent as a bearer header otherwise.
	AdminToken string
}

// Orchestrator runs submissions. At most one submission is in flight per
// Orchestrator; a second Submit while one runs is rejected, not queued.
type Orchestrator struct {
	exec     Executor
	cfg      Config
	logger   *zap.Logger
	inFlight atomic.Bool
}

// New constructs an Orchestrator.
func New(exec Executor, cfg Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		exec:   exec,
		cfg:    cfg,
		logger: logging.Or(logger),
	}
}

// Submit validates form, uploads new-origin candidate assets when the
// deployment separates uploads from mutations, and then creates or updates
// the entity. It returns the persisted entity on success. Failures are
// *ValidationError, catalog.ErrSubmitInFlight, or *SubmissionError.
func (o *Orchestrator) Submit(ctx context.Context, form FormState, candidates []*catalog.UploadCandidate) (*catalog.Entity, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, catalog.ErrSubmitInFlight
	}
	defer o.inFlight.Store(false)

	// Validating: failures short-circuit before any network call.
	if err := validate(form); err != nil {
		metrics.ObserveSubmission(string(StateFailed))
		return nil, err
	}

	existingRefs, fresh := partition(candidates)

	uploaded := false
	if o.cfg.SeparateAssetUpload && len(fresh) > 0 {
		refs, err := o.uploadAssets(ctx, fresh)
		if err != nil {
			// Nothing persisted yet; wholesale retry is safe.
			metrics.ObserveSubmission(string(StateFailed))
			return nil, &SubmissionError{State: StateFailed, Err: err}
		}
		existingRefs = append(existingRefs, refs...)
		fresh = nil
		uploaded = true
		o.logger.Info("assets uploaded", zap.Int("count", len(refs)))
	}

	entity, err := o.submitEntity(ctx, form, existingRefs, fresh)
	if err != nil {
		if uploaded {
			// The assets are stored server-side but linked to nothing.
			// Surfacing this distinctly is what lets downstream tooling
			// find and clean the orphans; retrying wholesale would
			// duplicate them.
			metrics.ObserveSubmission(string(StatePartialFailure))
			o.logger.Error("entity submission failed after asset upload",
				zap.Strings("orphaned_refs", existingRefs),
				zap.Error(err),
			)
			return nil, &SubmissionError{State: StatePartialFailure, UploadedRefs: existingRefs, Err: err}
		}
		metrics.ObserveSubmission(string(StateFailed))
		return nil, &SubmissionError{State: StateFailed, Err: err}
	}

	metrics.ObserveSubmission(string(StateSucceeded))
	return entity, nil
}

func (o *Orchestrator) uploadAssets(ctx context.Context, fresh []*catalog.UploadCandidate) ([]string, error) {
	op := endpoint.Operation{Kind: endpoint.KindUploadAssets}
	urls, err := endpoint.Resolve(op, o.cfg.Origins)
	if err != nil {
		return nil, err
	}

	payload, err := buildAssetPayload(fresh, o.cfg.AdminToken)
	if err != nil {
		return nil, fmt.Errorf("build asset payload: %w", err)
	}

	resp, err := o.exec.Execute(ctx, op.String(), urls, executor.RequestSpec{
		Method:      http.MethodPost,
		ContentType: payload.contentType,
		Header:      o.authHeader(),
		Body:        payload.body,
	})
	if err != nil {
		return nil, err
	}

	var refs []string
	if err := json.Unmarshal(resp.Data, &refs); err != nil {
		return nil, fmt.Errorf("decode uploaded refs: %w", err)
	}
	if len(refs) != len(fresh) {
		return nil, fmt.Errorf("uploaded %d asset(s), got %d reference(s)", len(fresh), len(refs))
	}
	return refs, nil
}

func (o *Orchestrator) submitEntity(ctx context.Context, form FormState, existingRefs []string, fresh []*catalog.UploadCandidate) (*catalog.Entity, error) {
	op := endpoint.Operation{Kind: endpoint.KindCreateProduct}
	method := http.MethodPost
	if form.ProductID != "" {
		op = endpoint.Operation{Kind: endpoint.KindUpdateProduct, EntityID: form.ProductID}
		method = http.MethodPut
	}
	urls, err := endpoint.Resolve(op, o.cfg.Origins)
	if err != nil {
		return nil, err
	}

	payload, err := buildEntityPayload(form, existingRefs, fresh, o.cfg.AdminToken)
	if err != nil {
		return nil, fmt.Errorf("build entity payload: %w", err)
	}

	resp, err := o.exec.Execute(ctx, op.String(), urls, executor.RequestSpec{
		Method:      method,
		ContentType: payload.contentType,
		Header:      o.authHeader(),
		Body:        payload.body,
	})
	if err != nil {
		return nil, err
	}

	var entity catalog.Entity
	if err := json.Unmarshal(resp.Data, &entity); err != nil {
		return nil, fmt.Errorf("decode persisted entity: %w", err)
	}
	return &entity, nil
}

func (o *Orchestrator) authHeader() http.Header {
	if o.cfg.AdminToken == "" {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+o.cfg.AdminToken)
	return h
}

func partition(candidates []*catalog.UploadCandidate) (existingRefs []string, fresh []*catalog.UploadCandidate) {
	for _, c := range candidates {
		if c.Origin == catalog.OriginExisting {
			existingRefs = append(existingRefs, c.Ref)
			continue
		}
		fresh = append(fresh, c)
	}
	return existingRefs, fresh
}

func validate(form FormState) error {
	var fields []FieldError
	add := func(field, reason string) {
		fields = append(fields, FieldError{Field: field, Reason: reason})
	}

	if form.Name == "" {
		add("name", "required")
	}
	if form.CategoryID == "" {
		add("category", "required")
	}
	if form.Price <= 0 {
		add("price", "must be greater than zero")
	}
	if form.Stock < 0 {
		add("stock", "must not be negative")
	}
	if form.DiscountPrice != nil {
		if *form.DiscountPrice <= 0 {
			add("discountPrice", "must be greater than zero")
		} else if *form.DiscountPrice >= form.Price {
			add("discountPrice", "must be below price")
		}
	}
	if d := form.Dimensions; d != nil {
		// All three or nothing; a partial triple is a data-entry slip.
		if d.Length <= 0 || d.Width <= 0 || d.Height <= 0 {
			add("dimensions", "length, width and height must all be positive")
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

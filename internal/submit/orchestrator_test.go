package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
	"github.com/Avinash9608/Furniture-sub006/internal/endpoint"
	"github.com/Avinash9608/Furniture-sub006/internal/executor"
)

type execCall struct {
	operation  string
	candidates []string
	spec       executor.RequestSpec
}

type execResult struct {
	resp executor.Response
	err  error
}

type fakeExec struct {
	mu      sync.Mutex
	calls   []execCall
	results []execResult
	delay   time.Duration
}

func (f *fakeExec) Execute(_ context.Context, operation string, candidates []string, spec executor.RequestSpec) (executor.Response, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, execCall{operation: operation, candidates: candidates, spec: spec})
	if len(f.results) == 0 {
		return executor.Response{}, errors.New("unexpected call")
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.resp, r.err
}

func (f *fakeExec) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func success(data string) execResult {
	return execResult{resp: executor.Response{StatusCode: 200, Data: json.RawMessage(data)}}
}

func validForm() FormState {
	return FormState{
		Name:       "Oslo Sofa Bed",
		Price:      499.99,
		Stock:      12,
		CategoryID: catalog.SeedSofaBedsID,
	}
}

func testOrigins() endpoint.Origins {
	return endpoint.Origins{Base: "https://shop.example.com"}
}

func newCandidate(name string, data []byte) *catalog.UploadCandidate {
	return &catalog.UploadCandidate{
		Name:      name,
		SizeBytes: int64(len(data)),
		MIMEType:  "image/png",
		Origin:    catalog.OriginNew,
		Data:      data,
	}
}

func parseParts(t *testing.T, spec executor.RequestSpec) (map[string]string, []string) {
	t.Helper()
	_, params, err := mime.ParseMediaType(spec.ContentType)
	require.NoError(t, err)
	reader := multipart.NewReader(bytes.NewReader(spec.Body), params["boundary"])
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	fields := map[string]string{}
	for name, values := range form.Value {
		fields[name] = values[0]
	}
	var files []string
	for _, fh := range form.File["images"] {
		files = append(files, fh.Filename)
	}
	return fields, files
}

func TestSubmitValidationShortCircuits(t *testing.T) {
	t.Parallel()

	exec := &fakeExec{}
	o := New(exec, Config{Origins: testOrigins()}, zap.NewNop())

	form := FormState{Price: -1, Stock: -3}
	_, err := o.Submit(context.Background(), form, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Reason
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "stock")
	assert.Equal(t, 0, exec.callCount(), "validation failures must not reach the network")
}

func TestSubmitSinglePhasePayload(t *testing.T) {
	t.Parallel()

	exec := &fakeExec{results: []execResult{success(`{"id":"p1","name":"Oslo Sofa Bed"}`)}}
	o := New(exec, Config{Origins: testOrigins(), AdminToken: "tok"}, zap.NewNop())

	discount := 449.0
	form := validForm()
	form.Description = "Three seater"
	form.Featured = true
	form.Material = "oak"
	form.Dimensions = &Dimensions{Length: 200, Width: 90, Height: 85}
	form.DiscountPrice = &discount
	form.ReplaceImages = true

	candidates := []*catalog.UploadCandidate{
		{Origin: catalog.OriginExisting, Ref: "/uploads/old-1.jpg"},
		newCandidate("front.png", []byte("png-bytes")),
	}

	entity, err := o.Submit(context.Background(), form, candidates)
	require.NoError(t, err)
	assert.Equal(t, "p1", entity.ID)

	require.Equal(t, 1, exec.callCount())
	call := exec.calls[0]
	assert.Equal(t, "create_product", call.operation)
	assert.Equal(t, http.MethodPost, call.spec.Method)
	assert.Equal(t, "Bearer tok", call.spec.Header.Get("Authorization"))
	assert.True(t, strings.HasPrefix(call.spec.ContentType, "multipart/form-data"))

	fields, files := parseParts(t, call.spec)
	assert.Equal(t, "Oslo Sofa Bed", fields["name"])
	assert.Equal(t, "499.99", fields["price"])
	assert.Equal(t, "12", fields["stock"])
	assert.Equal(t, catalog.SeedSofaBedsID, fields["category"])
	assert.Equal(t, "true", fields["featured"])
	assert.Equal(t, "oak", fields["material"])
	assert.Equal(t, "449", fields["discountPrice"])
	assert.Equal(t, "true", fields["replaceImages"])
	assert.Equal(t, "tok", fields["adminToken"])
	assert.JSONEq(t, `{"length":200,"width":90,"height":85}`, fields["dimensions"])
	assert.JSONEq(t, `["/uploads/old-1.jpg"]`, fields["existingImages"])
	assert.Equal(t, []string{"front.png"}, files)
}

func TestSubmitTwoPhaseSubstitutesUploadedRefs(t *testing.T) {
	t.Parallel()

	exec := &fakeExec{results: []execResult{
		success(`["/uploads/new-1.png","/uploads/new-2.png"]`),
		success(`{"id":"p2"}`),
	}}
	o := New(exec, Config{Origins: testOrigins(), SeparateAssetUpload: true}, zap.NewNop())

	candidates := []*catalog.UploadCandidate{
		{Origin: catalog.OriginExisting, Ref: "/uploads/old-1.jpg"},
		newCandidate("a.png", []byte("a")),
		newCandidate("b.png", []byte("b")),
	}

	entity, err := o.Submit(context.Background(), validForm(), candidates)
	require.NoError(t, err)
	assert.Equal(t, "p2", entity.ID)

	require.Equal(t, 2, exec.callCount())
	assert.Equal(t, "upload_assets", exec.calls[0].operation)
	assert.Equal(t, "create_product", exec.calls[1].operation)

	fields, files := parseParts(t, exec.calls[1].spec)
	assert.Empty(t, files, "pre-uploaded assets must not be resent as raw parts")
	assert.JSONEq(t, `["/uploads/old-1.jpg","/uploads/new-1.png","/uploads/new-2.png"]`, fields["existingImages"])
}

func TestSubmitUploadFailureIsPlainFailed(t *testing.T) {
	t.Parallel()

	exec := &fakeExec{results: []execResult{{err: errors.New("all candidates exhausted")}}}
	o := New(exec, Config{Origins: testOrigins(), SeparateAssetUpload: true}, zap.NewNop())

	_, err := o.Submit(context.Background(), validForm(), []*catalog.UploadCandidate{newCandidate("a.png", []byte("a"))})

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StateFailed, serr.State)
	assert.Empty(t, serr.UploadedRefs)
}

func TestSubmitEntityFailureAfterUploadIsPartialFailure(t *testing.T) {
	t.Parallel()

	exec := &fakeExec{results: []execResult{
		success(`["/uploads/new-1.png"]`),
		{err: errors.New("all candidates exhausted")},
	}}
	o := New(exec, Config{Origins: testOrigins(), SeparateAssetUpload: true}, zap.NewNop())

	_, err := o.Submit(context.Background(), validForm(), []*catalog.UploadCandidate{newCandidate("a.png", []byte("a"))})

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StatePartialFailure, serr.State)
	assert.Equal(t, []string{"/uploads/new-1.png"}, serr.UploadedRefs)
	assert.Contains(t, serr.Error(), "orphaned")
}

func TestSubmitEntityFailureWithoutUploadIsFailed(t *testing.T) {
	t.Parallel()

	exec := &fakeExec{results: []execResult{{err: errors.New("boom")}}}
	o := New(exec, Config{Origins: testOrigins()}, zap.NewNop())

	_, err := o.Submit(context.Background(), validForm(), nil)

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StateFailed, serr.State)
}

func TestSubmitUpdateUsesPutAndEntityID(t *testing.T) {
	t.Parallel()

	exec := &fakeExec{results: []execResult{success(`{"id":"p9"}`)}}
	o := New(exec, Config{Origins: testOrigins()}, zap.NewNop())

	form := validForm()
	form.ProductID = "p9"
	_, err := o.Submit(context.Background(), form, nil)
	require.NoError(t, err)

	require.Equal(t, 1, exec.callCount())
	call := exec.calls[0]
	assert.Equal(t, http.MethodPut, call.spec.Method)
	assert.Equal(t, "update_product:p9", call.operation)
	assert.Contains(t, call.candidates[0], "/products/p9")
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	t.Parallel()

	exec := &fakeExec{
		delay:   100 * time.Millisecond,
		results: []execResult{success(`{"id":"p1"}`), success(`{"id":"p1"}`)},
	}
	o := New(exec, Config{Origins: testOrigins()}, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), validForm(), nil)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	_, err := o.Submit(context.Background(), validForm(), nil)
	assert.ErrorIs(t, err, catalog.ErrSubmitInFlight)
	require.NoError(t, <-done)
}

func TestSubmitUploadRefCountMismatch(t *testing.T) {
	t.Parallel()

	exec := &fakeExec{results: []execResult{success(`["/uploads/only-one.png"]`)}}
	o := New(exec, Config{Origins: testOrigins(), SeparateAssetUpload: true}, zap.NewNop())

	candidates := []*catalog.UploadCandidate{
		newCandidate("a.png", []byte("a")),
		newCandidate("b.png", []byte("b")),
	}
	_, err := o.Submit(context.Background(), validForm(), candidates)

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StateFailed, serr.State)
}

func TestValidateDimensionConsistency(t *testing.T) {
	t.Parallel()

	form := validForm()
	form.Dimensions = &Dimensions{Length: 200, Width: 0, Height: 85}
	err := validate(form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "dimensions", verr.Fields[0].Field)
}

func TestValidateDiscountBelowPrice(t *testing.T) {
	t.Parallel()

	form := validForm()
	discount := form.Price + 10
	form.DiscountPrice = &discount
	err := validate(form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "discountPrice", verr.Fields[0].Field)
}

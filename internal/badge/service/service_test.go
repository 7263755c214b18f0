package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boothbase/boothbase-backend/internal/badge/domain"
	"github.com/boothbase/boothbase-backend/internal/badge/storage"
	"github.com/boothbase/boothbase-backend/pkg/account"
	apperrors "github.com/boothbase/boothbase-backend/pkg/errors"
	"github.com/boothbase/boothbase-backend/pkg/logger"
	"github.com/boothbase/boothbase-backend/pkg/messaging"
)

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

type fakeDirectory struct {
	candidates  []domain.DealerCandidate
	searchErr   error
	searchCalls int
	lastQuery   string

	createdID string
	createErr error
	forms     []domain.DealerForm

	attachedTo []string
	attachErr  error
}

func (f *fakeDirectory) SearchCandidates(_ context.Context, query string, _ int) ([]domain.DealerCandidate, error) {
	f.searchCalls++
	f.lastQuery = query
	return f.candidates, f.searchErr
}

func (f *fakeDirectory) CreateFromScan(_ context.Context, form domain.DealerForm) (string, error) {
	f.forms = append(f.forms, form)
	return f.createdID, f.createErr
}

func (f *fakeDirectory) AttachBadgeImage(_ context.Context, dealerID string, _ []byte, _ string) error {
	f.attachedTo = append(f.attachedTo, dealerID)
	return f.attachErr
}

type fakePublisher struct {
	types []string
}

func (f *fakePublisher) Publish(_ context.Context, eventType string, _ interface{}) error {
	f.types = append(f.types, eventType)
	return nil
}

func newTestService(rec *fakeRecognizer, dir *fakeDirectory, pub *fakePublisher) *Service {
	log := logger.New("badge-test", "test")
	return NewService(rec, dir, storage.NewSessionStore(time.Minute), pub, log, 10)
}

func testCtx() context.Context {
	return account.WithAccountID(context.Background(), "acct-1")
}

var badgeImage = []byte("fake-image-bytes")

func TestScanEmptyTextGoesToManualWithoutSearch(t *testing.T) {
	dir := &fakeDirectory{}
	pub := &fakePublisher{}
	svc := newTestService(&fakeRecognizer{text: ""}, dir, pub)

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	assert.Equal(t, domain.StateManualFallback, sess.State)
	assert.Equal(t, domain.FallbackNoText, sess.Reason)
	require.NotNil(t, sess.Prefill)
	assert.Empty(t, sess.Prefill.ContactName)
	assert.Zero(t, dir.searchCalls, "candidate search must not run for empty text")
	assert.Equal(t, []string{messaging.EventScanFallback}, pub.types)
}

func TestScanRecognizerErrorDegradesToManual(t *testing.T) {
	dir := &fakeDirectory{}
	svc := newTestService(&fakeRecognizer{err: errors.New("tesseract crashed")}, dir, &fakePublisher{})

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	assert.Equal(t, domain.StateManualFallback, sess.State)
	assert.Equal(t, domain.FallbackNoText, sess.Reason)
	assert.Zero(t, dir.searchCalls)
}

func TestScanSearchErrorDegradesToManual(t *testing.T) {
	dir := &fakeDirectory{searchErr: errors.New("db down")}
	svc := newTestService(&fakeRecognizer{text: "Jane Doe\nAcme Robotics Inc"}, dir, &fakePublisher{})

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	assert.Equal(t, domain.StateManualFallback, sess.State)
	assert.Equal(t, domain.FallbackPipelineError, sess.Reason)
}

func TestScanNoCandidatesPrefillsForm(t *testing.T) {
	dir := &fakeDirectory{}
	svc := newTestService(&fakeRecognizer{text: "Jane Doe\nAcme Robotics Inc"}, dir, &fakePublisher{})

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	assert.Equal(t, domain.StateManualFallback, sess.State)
	assert.Equal(t, domain.FallbackNoCandidates, sess.Reason)
	require.NotNil(t, sess.Prefill)
	assert.Equal(t, "Jane Doe", sess.Prefill.ContactName)
	assert.Equal(t, "Acme Robotics Inc", sess.Prefill.CompanyName)
	assert.Equal(t, 1, dir.searchCalls)
}

func TestScanSingleStrongCandidateAutoResolves(t *testing.T) {
	dir := &fakeDirectory{candidates: []domain.DealerCandidate{
		{ID: "d1", ContactName: "Ryan Skolnick", CompanyName: "Glen Dimplex Americas"},
	}}
	pub := &fakePublisher{}
	svc := newTestService(&fakeRecognizer{text: "RYAN\nSKOLNICK\nGLEN DIMPLEX AMERICAS"}, dir, pub)

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAutoResolved, sess.State)
	assert.Equal(t, "d1", sess.DealerID)
	assert.Greater(t, sess.Confidence, 0.8)
	assert.Equal(t, []string{"d1"}, dir.attachedTo, "capture must be attached on auto-resolve")
	assert.Equal(t, []string{messaging.EventScanResolved}, pub.types)
}

func TestScanSingleCandidateAtThresholdDoesNotAutoResolve(t *testing.T) {
	// One strong contact hit (50) plus three company hits (30) lands at
	// 80 exactly: confidence 0.80, which must not clear the strict bar.
	dir := &fakeDirectory{candidates: []domain.DealerCandidate{
		{ID: "d1", ContactName: "Ryan Harper", CompanyName: "Glen Dimplex Americas"},
	}}
	svc := newTestService(&fakeRecognizer{text: "RYAN\nGLEN DIMPLEX AMERICAS"}, dir, &fakePublisher{})

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	assert.Equal(t, domain.StateDisambiguating, sess.State)
	assert.InDelta(t, 0.8, sess.Confidence, 1e-9)
	assert.Empty(t, dir.attachedTo)
}

func TestScanMultipleCandidatesDisambiguates(t *testing.T) {
	dir := &fakeDirectory{candidates: []domain.DealerCandidate{
		{ID: "weak", ContactName: "Amy Skolnick", CompanyName: "Northern Hearth Supply"},
		{ID: "strong", ContactName: "Ryan Skolnick", CompanyName: "Glen Dimplex Americas"},
	}}
	pub := &fakePublisher{}
	svc := newTestService(&fakeRecognizer{text: "RYAN\nSKOLNICK\nGLEN DIMPLEX AMERICAS"}, dir, pub)

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	assert.Equal(t, domain.StateDisambiguating, sess.State)
	require.Len(t, sess.Candidates, 2)
	assert.Equal(t, "strong", sess.Candidates[0].ID)
	assert.Equal(t, []string{messaging.EventScanDisambiguated}, pub.types)
}

func TestSelectCandidate(t *testing.T) {
	dir := &fakeDirectory{candidates: []domain.DealerCandidate{
		{ID: "d1", ContactName: "Ryan Skolnick", CompanyName: "Glen Dimplex Americas"},
		{ID: "d2", ContactName: "Amy Skolnick", CompanyName: "Northern Hearth Supply"},
	}}
	pub := &fakePublisher{}
	svc := newTestService(&fakeRecognizer{text: "RYAN\nSKOLNICK\nGLEN DIMPLEX AMERICAS"}, dir, pub)

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	require.Equal(t, domain.StateDisambiguating, sess.State)

	resolved, err := svc.SelectCandidate(testCtx(), sess.ScanID, "d2")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAutoResolved, resolved.State)
	assert.Equal(t, "d2", resolved.DealerID)
	assert.Equal(t, []string{"d2"}, dir.attachedTo)
	assert.Equal(t, messaging.EventScanResolved, pub.types[len(pub.types)-1])
}

func TestSelectCandidateRejectsUnknownDealer(t *testing.T) {
	dir := &fakeDirectory{candidates: []domain.DealerCandidate{
		{ID: "d1", ContactName: "Ryan Skolnick", CompanyName: "Glen Dimplex Americas"},
		{ID: "d2", ContactName: "Amy Skolnick", CompanyName: "Northern Hearth Supply"},
	}}
	svc := newTestService(&fakeRecognizer{text: "RYAN\nSKOLNICK\nGLEN DIMPLEX AMERICAS"}, dir, &fakePublisher{})

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)

	_, err = svc.SelectCandidate(testCtx(), sess.ScanID, "not-a-candidate")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Empty(t, dir.attachedTo)
}

func TestCreateNewRetainsCaptureAndPrefills(t *testing.T) {
	dir := &fakeDirectory{candidates: []domain.DealerCandidate{
		{ID: "d1", ContactName: "Jane Harper", CompanyName: "Acme Robotics Inc"},
		{ID: "d2", ContactName: "Jane Cole", CompanyName: "Acme Robotics Inc"},
	}}
	svc := newTestService(&fakeRecognizer{text: "Jane Doe\nAcme Robotics Inc"}, dir, &fakePublisher{})

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	require.Equal(t, domain.StateDisambiguating, sess.State)

	manual, err := svc.CreateNew(testCtx(), sess.ScanID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateManualFallback, manual.State)
	assert.Equal(t, domain.FallbackUserCreateNew, manual.Reason)
	assert.Empty(t, manual.Candidates)
	assert.Equal(t, badgeImage, manual.Capture.Data, "capture stays for attach-on-save")
	require.NotNil(t, manual.Prefill)
	assert.Equal(t, "Jane Doe", manual.Prefill.ContactName)
	assert.Equal(t, "Acme Robotics Inc", manual.Prefill.CompanyName)
}

func TestSubmitCreatesDealerAndAttachesCapture(t *testing.T) {
	dir := &fakeDirectory{createdID: "new-dealer"}
	pub := &fakePublisher{}
	svc := newTestService(&fakeRecognizer{text: ""}, dir, pub)

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	require.Equal(t, domain.StateManualFallback, sess.State)

	form := domain.DealerForm{CompanyName: "Acme Robotics Inc", ContactName: "Jane Doe"}
	done, err := svc.Submit(testCtx(), sess.ScanID, form)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAutoResolved, done.State)
	assert.Equal(t, "new-dealer", done.DealerID)
	require.Len(t, dir.forms, 1)
	assert.Equal(t, "Jane Doe", dir.forms[0].ContactName)
	assert.Equal(t, []string{"new-dealer"}, dir.attachedTo)
}

func TestSubmitRequiresManualState(t *testing.T) {
	dir := &fakeDirectory{candidates: []domain.DealerCandidate{
		{ID: "d1", ContactName: "Jane Harper", CompanyName: "Acme Robotics Inc"},
		{ID: "d2", ContactName: "Jane Cole", CompanyName: "Acme Robotics Inc"},
	}}
	svc := newTestService(&fakeRecognizer{text: "Jane Doe\nAcme Robotics Inc"}, dir, &fakePublisher{})

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)

	_, err = svc.Submit(testCtx(), sess.ScanID, domain.DealerForm{CompanyName: "X", ContactName: "Y"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.StatusCode)
}

func TestGetScopesSessionsToAccount(t *testing.T) {
	dir := &fakeDirectory{}
	svc := newTestService(&fakeRecognizer{text: ""}, dir, &fakePublisher{})

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)

	otherCtx := account.WithAccountID(context.Background(), "acct-2")
	_, err = svc.Get(otherCtx, sess.ScanID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestAttachFailureDoesNotBlockResolution(t *testing.T) {
	dir := &fakeDirectory{
		candidates: []domain.DealerCandidate{
			{ID: "d1", ContactName: "Ryan Skolnick", CompanyName: "Glen Dimplex Americas"},
		},
		attachErr: errors.New("storage full"),
	}
	svc := newTestService(&fakeRecognizer{text: "RYAN\nSKOLNICK\nGLEN DIMPLEX AMERICAS"}, dir, &fakePublisher{})

	sess, err := svc.Scan(testCtx(), badgeImage, "image/png")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAutoResolved, sess.State)
	assert.Equal(t, "d1", sess.DealerID)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgedomain "github.com/boothbase/boothbase-backend/internal/badge/domain"
	"github.com/boothbase/boothbase-backend/internal/dealer/repository"
	"github.com/boothbase/boothbase-backend/internal/dealer/service"
	"github.com/boothbase/boothbase-backend/pkg/account"
	"github.com/boothbase/boothbase-backend/pkg/errors"
	"github.com/boothbase/boothbase-backend/pkg/logger"
	"github.com/boothbase/boothbase-backend/pkg/testutil"
)

func newService(mock *testutil.MockDB) *service.DealerService {
	log := logger.New("dealer-test", "test")
	return service.NewDealerService(
		repository.NewDealerRepository(mock.DB),
		repository.NewNoteRepository(mock.DB),
		repository.NewImageRepository(mock.DB),
		nil, // events not needed here
		log,
	)
}

func accCtx() context.Context {
	return account.WithAccountID(context.Background(), "11111111-1111-1111-1111-111111111111")
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()
	svc := newService(mock)

	_, err := svc.Search(accCtx(), "", 10)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.StatusCode)
	mock.ExpectationsWereMet(t)
}

func TestSearchCandidatesMapsResults(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()
	svc := newService(mock)

	rows := testutil.MockRows(
		"id", "account_id", "company_name", "contact_name", "email", "phone",
		"city", "state", "created_by", "created_at", "updated_at", "similarity",
	).AddRow(
		"d1", "11111111-1111-1111-1111-111111111111", "Glen Dimplex Americas", "Ryan Skolnick",
		"ryan@example.com", nil, "Cambridge", nil, nil, time.Now(), time.Now(), 0.42,
	)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	candidates, err := svc.SearchCandidates(accCtx(), "ryan skolnick", 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "d1", candidates[0].ID)
	assert.Equal(t, "Ryan Skolnick", candidates[0].ContactName)
	assert.Equal(t, "ryan@example.com", candidates[0].Email)
	assert.Empty(t, candidates[0].Phone)
	assert.InDelta(t, 0.42, candidates[0].Score, 1e-9)
	mock.ExpectationsWereMet(t)
}

func TestSearchClampsLimit(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()
	svc := newService(mock)

	mock.ExpectQuery("SELECT").
		WithArgs("11111111-1111-1111-1111-111111111111", "acme", 10).
		WillReturnRows(testutil.MockRows(
			"id", "account_id", "company_name", "contact_name", "email", "phone",
			"city", "state", "created_by", "created_at", "updated_at", "similarity",
		))

	_, err := svc.Search(accCtx(), "acme", 9999)
	require.NoError(t, err)
	mock.ExpectationsWereMet(t)
}

func TestAddNoteRejectsInvalidKind(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()
	svc := newService(mock)

	err := svc.AddNote(accCtx(), &repository.Note{
		DealerID: "d1",
		Kind:     "reminder",
		Body:     "nope",
	})
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.StatusCode)
	mock.ExpectationsWereMet(t)
}

func TestCreateFromScan(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()
	svc := newService(mock)

	mock.ExpectQuery("INSERT INTO dealers").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	id, err := svc.CreateFromScan(accCtx(), scanForm())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	mock.ExpectationsWereMet(t)
}

func TestCreateFromScanRequiresAccount(t *testing.T) {
	mock := testutil.NewMockDB(t)
	defer mock.Close()
	svc := newService(mock)

	_, err := svc.CreateFromScan(context.Background(), scanForm())
	assert.Error(t, err)
	mock.ExpectationsWereMet(t)
}

func scanForm() badgedomain.DealerForm {
	return badgedomain.DealerForm{
		CompanyName: "Glen Dimplex Americas",
		ContactName: "Ryan Skolnick",
		City:        "Cambridge",
	}
}

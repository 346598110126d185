package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shukatsu-reminders/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func putCompany(t *testing.T, s *Store, id, name string) {
	t.Helper()
	url := "https://" + id + ".example"
	industry := 3
	require.NoError(t, s.PutCompany(context.Background(), &domain.Company{
		CompanyID: id, Name: name, URL: &url, Industry: &industry, CreatedAt: testNow, UpdatedAt: testNow,
	}))
}

func putSelection(t *testing.T, s *Store, userID, companyID string, status domain.SelectionStatus, updated time.Time) {
	t.Helper()
	require.NoError(t, s.PutSelection(context.Background(), &domain.Selection{
		UserID: userID, CompanyID: companyID, Status: status, CreatedAt: updated, UpdatedAt: updated,
	}))
}

func putEvent(t *testing.T, s *Store, id, companyID string, typ domain.EventType, start time.Time) {
	t.Helper()
	require.NoError(t, s.PutEvent(context.Background(), &domain.Event{
		EventID: id, CompanyID: companyID, Title: id, Type: typ, StartTime: start,
	}))
}

func selectionIDs(sels []domain.Selection) []string {
	ids := make([]string, len(sels))
	for i, s := range sels {
		ids[i] = s.CompanyID
	}
	return ids
}

func eventIDs(events []domain.Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.EventID
	}
	return ids
}

func TestOpen_MigratesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestListSelections_CutoffIsStrict(t *testing.T) {
	s := openTestStore(t)
	cutoff := testNow.Add(-7 * day)
	for _, id := range []string{"c1", "c2", "c3"} {
		putCompany(t, s, id, "Company "+id)
	}
	putSelection(t, s, "u1", "c1", domain.StatusESSubmit, cutoff)                    // exactly at cut-off
	putSelection(t, s, "u1", "c2", domain.StatusESSubmit, cutoff.Add(-time.Second)) // one second older
	putSelection(t, s, "u1", "c3", domain.StatusInterview, cutoff.Add(-day))

	got, err := s.ListSelections(context.Background(), "u1",
		[]domain.SelectionStatus{domain.StatusESSubmit, domain.StatusInterview}, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2", "c3"}, selectionIDs(got))
}

func TestListSelections_FiltersUserAndStatus(t *testing.T) {
	s := openTestStore(t)
	old := testNow.Add(-30 * day)
	putCompany(t, s, "c1", "Acme")
	putSelection(t, s, "u1", "c1", domain.StatusOffer, old)
	putSelection(t, s, "u2", "c1", domain.StatusESSubmit, old)

	got, err := s.ListSelections(context.Background(), "u1",
		[]domain.SelectionStatus{domain.StatusESSubmit, domain.StatusInterview}, testNow)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.ListSelections(context.Background(), "u1", nil, testNow)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListSelections_JoinsCompany(t *testing.T) {
	s := openTestStore(t)
	putCompany(t, s, "c1", "Acme")
	putSelection(t, s, "u1", "c1", domain.StatusESSubmit, testNow.Add(-10*day))
	putSelection(t, s, "u1", "gone", domain.StatusESSubmit, testNow.Add(-10*day))

	got, err := s.ListSelections(context.Background(), "u1", []domain.SelectionStatus{domain.StatusESSubmit}, testNow)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].Company)
	assert.Equal(t, "Acme", got[0].Company.Name)
	require.NotNil(t, got[0].Company.URL)
	assert.Equal(t, "https://c1.example", *got[0].Company.URL)
	assert.Nil(t, got[0].Company.Address)
	require.NotNil(t, got[0].Company.Industry)
	assert.Equal(t, 3, *got[0].Company.Industry)
	assert.Equal(t, testNow.Add(-10*day), got[0].UpdatedAt)

	assert.Equal(t, "gone", got[1].CompanyID)
	assert.Nil(t, got[1].Company)
}

func TestListEventsForCompany_HalfOpenWindow(t *testing.T) {
	s := openTestStore(t)
	end := testNow.Add(7 * day)
	putEvent(t, s, "before", "c1", domain.EventInterview, testNow.Add(-time.Millisecond))
	putEvent(t, s, "at-start", "c1", domain.EventInterview, testNow)
	putEvent(t, s, "inside", "c1", domain.EventSeminar, testNow.Add(3*day))
	putEvent(t, s, "last", "c1", domain.EventInterview, end.Add(-time.Millisecond))
	putEvent(t, s, "at-end", "c1", domain.EventInterview, end)
	putEvent(t, s, "other-company", "c2", domain.EventInterview, testNow.Add(day))

	got, err := s.ListEventsForCompany(context.Background(), "c1", testNow, end)
	require.NoError(t, err)
	assert.Equal(t, []string{"at-start", "inside", "last"}, eventIDs(got))
}

func TestListDeadlineEvents_ClosedWindow(t *testing.T) {
	s := openTestStore(t)
	putCompany(t, s, "c1", "Acme")
	from, to := testNow.Add(day), testNow.Add(3*day)
	putEvent(t, s, "too-soon", "c1", domain.EventDeadline, testNow.Add(time.Duration(0.999*float64(day))))
	putEvent(t, s, "at-from", "c1", domain.EventDeadline, from)
	putEvent(t, s, "interview", "c1", domain.EventInterview, testNow.Add(2*day))
	putEvent(t, s, "orphan", "", domain.EventDeadline, testNow.Add(2*day))
	putEvent(t, s, "at-to", "c1", domain.EventDeadline, to)
	putEvent(t, s, "too-late", "c1", domain.EventDeadline, testNow.Add(time.Duration(3.001*float64(day))))

	got, err := s.ListDeadlineEvents(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, []string{"at-from", "orphan", "at-to"}, eventIDs(got))

	require.NotNil(t, got[0].Company)
	assert.Equal(t, "Acme", got[0].Company.Name)
	assert.Empty(t, got[1].CompanyID)
	assert.Nil(t, got[1].Company)
	assert.Equal(t, to, got[2].StartTime)
}

func TestPutEvent_OptionalFields(t *testing.T) {
	s := openTestStore(t)
	end := testNow.Add(26 * time.Hour)
	loc := "Tokyo"
	require.NoError(t, s.PutEvent(context.Background(), &domain.Event{
		EventID: "e1", CompanyID: "c1", Title: "ES", Type: domain.EventDeadline,
		StartTime: testNow.Add(25 * time.Hour), EndTime: &end, Location: &loc,
	}))

	got, err := s.ListDeadlineEvents(context.Background(), testNow.Add(day), testNow.Add(3*day))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].EndTime)
	assert.Equal(t, end, *got[0].EndTime)
	require.NotNil(t, got[0].Location)
	assert.Equal(t, "Tokyo", *got[0].Location)
	assert.Nil(t, got[0].Description)
}

func TestGetSelection(t *testing.T) {
	s := openTestStore(t)
	putSelection(t, s, "u1", "c1", domain.StatusEntry, testNow)

	sel, err := s.GetSelection(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEntry, sel.Status)
	assert.Equal(t, testNow, sel.UpdatedAt)

	_, err = s.GetSelection(context.Background(), "u1", "c2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPutSelection_Replaces(t *testing.T) {
	s := openTestStore(t)
	putSelection(t, s, "u1", "c1", domain.StatusInterested, testNow)
	putSelection(t, s, "u1", "c1", domain.StatusESSubmit, testNow.Add(time.Hour))

	sel, err := s.GetSelection(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusESSubmit, sel.Status)
}

func TestCeilMillis(t *testing.T) {
	assert.Equal(t, testNow.UnixMilli(), ceilMillis(testNow))
	assert.Equal(t, testNow.UnixMilli()+1, ceilMillis(testNow.Add(time.Nanosecond)))
}

package kyc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	records map[string]Record
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[string]Record)}
}

func (s *stubRepo) Get(_ context.Context, hostUID string) (*Record, error) {
	record, ok := s.records[hostUID]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (s *stubRepo) Upsert(_ context.Context, record Record) error {
	s.records[record.HostUID] = record
	return nil
}

type stubHosts struct {
	infos    map[string]HostInfo
	mirrored map[string]Status
}

func newStubHosts() *stubHosts {
	return &stubHosts{infos: make(map[string]HostInfo), mirrored: make(map[string]Status)}
}

func (s *stubHosts) Lookup(_ context.Context, hostUID string) (HostInfo, error) {
	info, ok := s.infos[hostUID]
	if !ok {
		return HostInfo{}, ErrHostNotFound
	}
	return info, nil
}

func (s *stubHosts) SetKycStatus(_ context.Context, hostUID string, status Status, _ time.Time) error {
	s.mirrored[hostUID] = status
	return nil
}

type recordingNotifier struct {
	sentTo []string
}

func (r *recordingNotifier) KycSubmitted(_ context.Context, _, email string) error {
	r.sentTo = append(r.sentTo, email)
	return nil
}

func testSubmission() Submission {
	return Submission{
		FullName:       "Asha Rao",
		DocumentType:   "passport",
		DocumentNumber: "P1234567",
		DocumentURL:    "https://cdn.example.com/docs/p1234567.pdf",
		Address:        "14 Lake View Road, Bengaluru",
	}
}

func TestSubmit_FilesPendingRecord(t *testing.T) {
	repo := newStubRepo()
	hostDir := newStubHosts()
	hostDir.infos["host-1"] = HostInfo{IsHost: true, Name: "Asha", Email: "asha@example.com"}
	notifier := &recordingNotifier{}
	svc := NewService(repo, hostDir, notifier)

	record, err := svc.Submit(context.Background(), "host-1", testSubmission())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, record.Status)
	assert.Equal(t, "Asha Rao", record.FullName)
	assert.False(t, record.SubmittedAt.IsZero())
	assert.Equal(t, StatusPending, hostDir.mirrored["host-1"])
	assert.Equal(t, []string{"asha@example.com"}, notifier.sentTo)

	status, err := svc.Status(context.Background(), "host-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
}

func TestSubmit_RejectsUnknownHost(t *testing.T) {
	svc := NewService(newStubRepo(), newStubHosts(), nil)

	_, err := svc.Submit(context.Background(), "ghost", testSubmission())
	assert.ErrorIs(t, err, ErrHostNotFound)
}

func TestSubmit_RejectsNonHostAccount(t *testing.T) {
	hostDir := newStubHosts()
	hostDir.infos["cust-1"] = HostInfo{IsHost: false}
	svc := NewService(newStubRepo(), hostDir, nil)

	_, err := svc.Submit(context.Background(), "cust-1", testSubmission())
	assert.ErrorIs(t, err, ErrNotHost)
}

func TestSubmit_RejectsWhenAlreadyVerified(t *testing.T) {
	repo := newStubRepo()
	repo.records["host-1"] = Record{HostUID: "host-1", Status: StatusVerified}
	hostDir := newStubHosts()
	hostDir.infos["host-1"] = HostInfo{IsHost: true}
	svc := NewService(repo, hostDir, nil)

	_, err := svc.Submit(context.Background(), "host-1", testSubmission())
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestSubmit_AllowsResubmissionAfterRejection(t *testing.T) {
	repo := newStubRepo()
	repo.records["host-1"] = Record{HostUID: "host-1", Status: StatusRejected, RejectionReason: "document unreadable"}
	hostDir := newStubHosts()
	hostDir.infos["host-1"] = HostInfo{IsHost: true}
	svc := NewService(repo, hostDir, nil)

	record, err := svc.Submit(context.Background(), "host-1", testSubmission())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, record.Status)
	assert.Empty(t, record.RejectionReason)
}

func TestStatus_DefaultsToNone(t *testing.T) {
	svc := NewService(newStubRepo(), newStubHosts(), nil)

	status, err := svc.Status(context.Background(), "never-submitted")
	require.NoError(t, err)
	assert.Equal(t, StatusNone, status)

	detail, err := svc.Detail(context.Background(), "never-submitted")
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestPermitsPublication(t *testing.T) {
	assert.True(t, PermitsPublication(StatusVerified))
	assert.False(t, PermitsPublication(StatusNone))
	assert.False(t, PermitsPublication(StatusPending))
	assert.False(t, PermitsPublication(StatusRejected))
}

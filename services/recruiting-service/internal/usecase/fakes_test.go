package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/repository"
)

var duplicateKey = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

// inlineTx runs fn without a session.
type inlineTx struct{ calls int }

func (t *inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[bson.ObjectID]model.Job
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: map[bson.ObjectID]model.Job{}}
}

func (r *memJobRepo) CreateJob(_ context.Context, job *model.Job) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job.ID = bson.NewObjectID()
	r.jobs[job.ID] = *job
	return job, nil
}

func (r *memJobRepo) GetJob(_ context.Context, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	job, ok := r.jobs[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &job, nil
}

func (r *memJobRepo) ListJobsByStartup(_ context.Context, startupID string) ([]model.Job, error) {
	return r.filter(func(j model.Job) bool { return j.StartupID == startupID }), nil
}

func (r *memJobRepo) ListOpenJobs(_ context.Context, limit, offset int64) ([]model.Job, error) {
	open := r.filter(func(j model.Job) bool { return j.Status == model.JobStatusOpen })
	if offset >= int64(len(open)) {
		return []model.Job{}, nil
	}
	open = open[offset:]
	if int64(len(open)) > limit {
		open = open[:limit]
	}
	return open, nil
}

func (r *memJobRepo) CountActiveJobs(_ context.Context, startupID string) (int64, error) {
	open := r.filter(func(j model.Job) bool {
		return j.StartupID == startupID && j.Status == model.JobStatusOpen
	})
	return int64(len(open)), nil
}

func (r *memJobRepo) UpdateJobStatus(
	_ context.Context,
	id, startupID string,
	status model.JobStatus,
) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	job, ok := r.jobs[objectID]
	if !ok || job.StartupID != startupID {
		return nil, mongo.ErrNoDocuments
	}
	job.Status = status
	r.jobs[objectID] = job
	return &job, nil
}

func (r *memJobRepo) filter(keep func(model.Job) bool) []model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Job{}
	for _, j := range r.jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID.Hex() < out[b].ID.Hex() })
	return out
}

type memApplicationRepo struct {
	mu           sync.Mutex
	applications map[bson.ObjectID]model.Application
}

func newMemApplicationRepo() *memApplicationRepo {
	return &memApplicationRepo{applications: map[bson.ObjectID]model.Application{}}
}

func (r *memApplicationRepo) CreateApplication(
	_ context.Context,
	application *model.Application,
) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.applications {
		if a.JobID == application.JobID && a.StudentID == application.StudentID {
			return nil, duplicateKey
		}
	}

	application.ID = bson.NewObjectID()
	r.applications[application.ID] = *application
	return application, nil
}

func (r *memApplicationRepo) GetApplication(_ context.Context, id string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	application, ok := r.applications[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &application, nil
}

func (r *memApplicationRepo) ListByStudent(_ context.Context, studentID string) ([]model.Application, error) {
	return r.filter(func(a model.Application) bool { return a.StudentID == studentID }), nil
}

func (r *memApplicationRepo) ListByJob(_ context.Context, jobID string) ([]model.Application, error) {
	return r.filter(func(a model.Application) bool { return a.JobID == jobID }), nil
}

func (r *memApplicationRepo) TransitionStatus(
	_ context.Context,
	id string,
	change model.StatusChange,
) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	application, ok := r.applications[objectID]
	if !ok || application.Status != change.From {
		return nil, mongo.ErrNoDocuments
	}

	application.Status = change.To
	application.History = append(application.History, change)
	r.applications[objectID] = application
	return &application, nil
}

func (r *memApplicationRepo) set(application model.Application) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applications[application.ID] = application
}

func (r *memApplicationRepo) filter(keep func(model.Application) bool) []model.Application {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Application{}
	for _, a := range r.applications {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// staleApplicationRepo serves a snapshot on reads, the way a concurrent
// writer looks to a request that loaded the document first.
type staleApplicationRepo struct {
	*memApplicationRepo
	snapshot model.Application
}

func (r *staleApplicationRepo) GetApplication(context.Context, string) (*model.Application, error) {
	snapshot := r.snapshot
	return &snapshot, nil
}

type memInterviewRepo struct {
	mu         sync.Mutex
	interviews map[bson.ObjectID]model.Interview
}

func newMemInterviewRepo() *memInterviewRepo {
	return &memInterviewRepo{interviews: map[bson.ObjectID]model.Interview{}}
}

func (r *memInterviewRepo) CreateInterview(_ context.Context, interview *model.Interview) (*model.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	interview.ID = bson.NewObjectID()
	r.interviews[interview.ID] = *interview
	return interview, nil
}

func (r *memInterviewRepo) GetInterview(_ context.Context, id string) (*model.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	interview, ok := r.interviews[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &interview, nil
}

func (r *memInterviewRepo) ListByStartup(_ context.Context, startupID string) ([]model.Interview, error) {
	return r.filter(func(i model.Interview) bool { return i.StartupID == startupID }), nil
}

func (r *memInterviewRepo) ListByStudent(_ context.Context, studentID string) ([]model.Interview, error) {
	return r.filter(func(i model.Interview) bool { return i.StudentID == studentID }), nil
}

func (r *memInterviewRepo) HasOverlap(
	_ context.Context,
	startupID, interviewerKey, studentID string,
	start, end time.Time,
) (bool, error) {
	overlapping := r.filter(func(i model.Interview) bool {
		if i.Status != model.InterviewScheduled || !i.Overlaps(start, end) {
			return false
		}
		sameInterviewer := i.StartupID == startupID && i.InterviewerKey == interviewerKey
		return sameInterviewer || i.StudentID == studentID
	})
	return len(overlapping) > 0, nil
}

func (r *memInterviewRepo) TransitionStatus(
	_ context.Context,
	id string,
	from, to model.InterviewStatus,
) (*model.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	interview, ok := r.interviews[objectID]
	if !ok || interview.Status != from {
		return nil, mongo.ErrNoDocuments
	}
	interview.Status = to
	r.interviews[objectID] = interview
	return &interview, nil
}

func (r *memInterviewRepo) filter(keep func(model.Interview) bool) []model.Interview {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Interview{}
	for _, i := range r.interviews {
		if keep(i) {
			out = append(out, i)
		}
	}
	return out
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
}

func (r *memNotificationRepo) CreateNotification(
	_ context.Context,
	notification *model.Notification,
) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification.ID = bson.NewObjectID()
	r.notifications = append(r.notifications, *notification)
	return notification, nil
}

func (r *memNotificationRepo) ListByRecipient(
	_ context.Context,
	recipientID string,
	limit int64,
) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Notification{}
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && int64(len(out)) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID && !notification.Read {
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id, recipientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, n := range r.notifications {
		if n.ID.Hex() == id && n.RecipientID == recipientID {
			r.notifications[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for i, notification := range r.notifications {
		if notification.RecipientID == recipientID && !notification.Read {
			r.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) ofType(typ model.NotificationType) []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Notification{}
	for _, n := range r.notifications {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type recordingSlots struct {
	mu   sync.Mutex
	keys []string
}

func (s *recordingSlots) Bump(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return nil
}

// fixedPlans resolves every startup to the tier stored for it, FREE otherwise.
type fixedPlans map[string]plan.Tier

func (p fixedPlans) Plans() []plan.Capabilities { return plan.All() }

func (p fixedPlans) Capabilities(_ context.Context, startupID string) (plan.Capabilities, error) {
	tier, ok := p[startupID]
	if !ok {
		tier = plan.TierFree
	}
	return plan.For(tier), nil
}

func (p fixedPlans) SetTier(_ context.Context, startupID string, tier plan.Tier) (*model.Subscription, error) {
	p[startupID] = tier
	return &model.Subscription{StartupID: startupID, Tier: tier}, nil
}

// aggregatingAnalytics groups the applications held by memApplicationRepo.
type aggregatingAnalytics struct {
	applications *memApplicationRepo
}

func (a aggregatingAnalytics) StatusCountsByJob(
	_ context.Context,
	startupID string,
) ([]repository.JobStatusCount, error) {
	type key struct {
		job    string
		status model.ApplicationStatus
	}
	grouped := map[key]int64{}
	for _, application := range a.applications.filter(func(a model.Application) bool {
		return a.StartupID == startupID
	}) {
		grouped[key{application.JobID, application.Status}]++
	}

	out := []repository.JobStatusCount{}
	for k, n := range grouped {
		out = append(out, repository.JobStatusCount{JobID: k.job, Status: k.status, Count: n})
	}
	return out, nil
}

func (a aggregatingAnalytics) StagesReached(_ context.Context, startupID string) ([]repository.StageCount, error) {
	reached := map[model.ApplicationStatus]int64{}
	for _, application := range a.applications.filter(func(a model.Application) bool {
		return a.StartupID == startupID
	}) {
		seen := map[model.ApplicationStatus]bool{application.Status: true}
		for _, change := range application.History {
			seen[change.To] = true
		}
		for status := range seen {
			reached[status]++
		}
	}

	out := []repository.StageCount{}
	for status, n := range reached {
		out = append(out, repository.StageCount{Status: status, Count: n})
	}
	return out, nil
}

package orchestrator

import (
	"context"
	"strings"
	"sync"

	"chemviz-client/internal/apperr"
	"chemviz-client/internal/dto"
	"chemviz-client/internal/gateway"
	"chemviz-client/internal/model"
	"chemviz-client/internal/pkg/logger"
	"chemviz-client/pkg/events"
	"chemviz-client/pkg/view"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

const logModule = "ORCHESTRATOR"

const (
	MsgSelectFile     = "Please select a file"
	MsgUploadFailed   = "Upload failed"
	MsgUploadDone     = "File uploaded successfully"
	MsgSelectFailed   = "Error loading history data"
	MsgHistoryFailed  = "Error loading history"
	MsgEquipmentError = "Error loading equipment data"
)

type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusUploading Status = "UPLOADING"
	StatusLoading   Status = "LOADING"
	StatusReady     Status = "READY"
	StatusError     Status = "ERROR"
)

// DataGateway is the subset of the gateway the orchestrator calls.
type DataGateway interface {
	Upload(ctx context.Context, file gateway.UploadFile) (*gateway.UploadResult, error)
	ListEquipment(ctx context.Context, uploadId *int64) ([]model.EquipmentRecord, error)
	ListHistory(ctx context.Context) ([]model.UploadRecord, error)
	FetchSummary(ctx context.Context, uploadId int64) (*model.Summary, error)
}

type IOrchestrator interface {
	SubmitUpload(ctx context.Context, file *gateway.UploadFile) (*gateway.UploadResult, error)
	SelectHistoryEntry(ctx context.Context, uploadId int64) error
	RefreshHistory(ctx context.Context) error
	LoadLatest(ctx context.Context) (bool, error)
	SetSearchTerm(term string)
	FilteredRecords() []model.EquipmentRecord
	PieSeries() (view.PieSeries, bool)
	BarSeries() (view.BarSeries, bool)
	Active() model.ActiveDataset
	Snapshot() Snapshot
	Reset()
}

// Snapshot is a copy of the orchestrator state; callers may keep it.
type Snapshot struct {
	Status        Status
	Message       string
	History       []model.UploadRecord
	HistoryLoaded bool
	Summary       *model.Summary
	Records       []model.EquipmentRecord
	RecordsLoaded bool
	Active        model.ActiveDataset
	SearchTerm    string
	// Generation changes whenever summary or records change.
	Generation uint64
}

// slot identifies a piece of state that results are applied to. Each slot
// has its own sequence so that only the latest request per slot wins.
type slot int

const (
	slotDataset slot = iota
	slotEquipment
	slotHistory
	slotCount
)

type Orchestrator struct {
	gateway   DataGateway
	validate  *validator.Validate
	memo      *view.Memo
	publisher events.Publisher
	logger    logger.ILogger

	mu            sync.Mutex
	seq           [slotCount]uint64
	cancelDataset context.CancelFunc
	cancelRecords context.CancelFunc
	state         Snapshot
}

var _ IOrchestrator = (*Orchestrator)(nil)

func New(gw DataGateway, publisher events.Publisher, log logger.ILogger) *Orchestrator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Orchestrator{
		gateway:   gw,
		validate:  validator.New(),
		memo:      view.NewMemo(),
		publisher: publisher,
		logger:    log,
		state:     Snapshot{Status: StatusIdle},
	}
}

// bump starts a new request on s and returns its tag. Caller holds mu.
func (o *Orchestrator) bump(s slot) uint64 {
	o.seq[s]++
	return o.seq[s]
}

// current reports whether tag is still the latest on s. Caller holds mu.
func (o *Orchestrator) current(s slot, tag uint64) bool {
	return o.seq[s] == tag
}

// supersedeRecords starts a new equipment request and cancels the pending
// one. It is only called when the active dataset actually changes, so a
// failed switch never disturbs an upload follow-up. Caller holds mu.
func (o *Orchestrator) supersedeRecords(cancel context.CancelFunc) uint64 {
	if o.cancelRecords != nil {
		o.cancelRecords()
	}
	o.cancelRecords = cancel
	return o.bump(slotEquipment)
}

// beginDataset supersedes any in-flight dataset switch. The returned context
// is cancelled when a newer switch or a reset starts.
func (o *Orchestrator) beginDataset(ctx context.Context, status Status) (context.Context, context.CancelFunc, uint64) {
	dctx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelDataset != nil {
		o.cancelDataset()
	}
	o.cancelDataset = cancel
	o.state.Status = status
	o.state.Message = ""
	return dctx, cancel, o.bump(slotDataset)
}

// SubmitUpload sends file and, on success, makes the new upload the active
// dataset. Its records and the refreshed history are fetched afterwards;
// failures there are reported in the snapshot message but do not fail the
// upload.
func (o *Orchestrator) SubmitUpload(ctx context.Context, file *gateway.UploadFile) (*gateway.UploadResult, error) {
	if file == nil || o.validate.Struct(dto.UploadRequest{Filename: file.Name}) != nil {
		err := &apperr.ValidationError{Field: "file", Message: MsgSelectFile}
		o.mu.Lock()
		o.state.Message = err.Message
		o.mu.Unlock()
		return nil, err
	}

	dctx, cancel, tag := o.beginDataset(ctx, StatusUploading)
	defer cancel()

	o.logger.Info(logModule, "Uploading file", map[string]interface{}{"filename": file.Name, "bytes": len(file.Data)})
	result, err := o.gateway.Upload(dctx, *file)

	o.mu.Lock()
	if !o.current(slotDataset, tag) {
		o.mu.Unlock()
		return nil, apperr.ErrSuperseded
	}
	if err != nil {
		msg := apperr.MessageOr(err, MsgUploadFailed)
		o.state.Status = StatusError
		o.state.Message = msg
		o.mu.Unlock()
		o.failed(dctx, "upload", err, msg)
		return nil, err
	}

	// The follow-up outlives dctx: only a committed dataset change stops it.
	eqCtx, eqCancel := context.WithCancel(ctx)
	defer eqCancel()

	summary := result.Summary
	summary.TypeDistribution = summary.TypeDistribution.Clone()
	o.state.Active = model.ActiveUpload(result.UploadId)
	o.state.Summary = &summary
	o.state.Records = nil
	o.state.RecordsLoaded = false
	o.state.Generation++
	o.state.Status = StatusLoading
	eqTag := o.supersedeRecords(eqCancel)
	histTag := o.bump(slotHistory)
	o.mu.Unlock()

	o.logger.Info(logModule, "Upload accepted", map[string]interface{}{"upload_id": result.UploadId})
	o.publish(dctx, events.DatasetActivated, map[string]interface{}{"upload_id": result.UploadId, "source": "upload"})

	var (
		wg       sync.WaitGroup
		failMu   sync.Mutex
		failures []string
	)
	report := func(msg string) {
		if msg == "" {
			return
		}
		failMu.Lock()
		defer failMu.Unlock()
		failures = append(failures, msg)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := o.loadEquipment(eqCtx, eqTag, result.UploadId); err != nil {
			report(apperr.MessageOr(err, MsgEquipmentError))
		}
	}()
	go func() {
		defer wg.Done()
		if err := o.applyHistory(ctx, histTag); err != nil {
			report(apperr.MessageOr(err, MsgHistoryFailed))
		}
	}()
	wg.Wait()

	o.mu.Lock()
	if o.current(slotDataset, tag) {
		o.state.Status = StatusReady
		o.state.Message = MsgUploadDone
		if len(failures) > 0 {
			o.state.Message += " (" + strings.Join(failures, "; ") + ")"
		}
	}
	o.mu.Unlock()

	return result, nil
}

// loadEquipment applies the records of uploadId while eqTag is current. Every
// change of the active dataset bumps slotEquipment.
func (o *Orchestrator) loadEquipment(ctx context.Context, eqTag uint64, uploadId int64) error {
	records, err := o.gateway.ListEquipment(ctx, &uploadId)

	o.mu.Lock()
	if !o.current(slotEquipment, eqTag) {
		o.mu.Unlock()
		return apperr.ErrSuperseded
	}
	if err != nil {
		o.mu.Unlock()
		o.logger.Warn(logModule, "Equipment follow-up failed", map[string]interface{}{"upload_id": uploadId, "error": err.Error()})
		return err
	}
	o.state.Records = append([]model.EquipmentRecord{}, records...)
	o.state.RecordsLoaded = true
	o.state.Generation++
	o.mu.Unlock()

	o.publish(ctx, events.EquipmentLoaded, map[string]interface{}{"upload_id": uploadId, "count": len(records)})
	return nil
}

// SelectHistoryEntry switches the active dataset to uploadId. Summary and
// records are fetched concurrently and applied together; on any failure the
// current dataset stays as it was.
func (o *Orchestrator) SelectHistoryEntry(ctx context.Context, uploadId int64) error {
	dctx, cancel, tag := o.beginDataset(ctx, StatusLoading)
	defer cancel()

	var (
		summary *model.Summary
		records []model.EquipmentRecord
	)
	g, gctx := errgroup.WithContext(dctx)
	g.Go(func() error {
		var err error
		summary, err = o.gateway.FetchSummary(gctx, uploadId)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = o.gateway.ListEquipment(gctx, &uploadId)
		return err
	})
	err := g.Wait()

	o.mu.Lock()
	if !o.current(slotDataset, tag) {
		o.mu.Unlock()
		return apperr.ErrSuperseded
	}
	if err == nil && summary == nil {
		err = &apperr.DecodeError{Op: "summary", Err: errEmptySummary}
	}
	if err != nil {
		msg := apperr.MessageOr(err, MsgSelectFailed)
		o.state.Status = StatusError
		o.state.Message = msg
		o.mu.Unlock()
		o.failed(dctx, "select", err, msg)
		return err
	}

	// A pending upload follow-up belongs to the previous dataset.
	o.supersedeRecords(nil)
	s := *summary
	s.TypeDistribution = s.TypeDistribution.Clone()
	o.state.Active = model.ActiveUpload(uploadId)
	o.state.Summary = &s
	o.state.Records = append([]model.EquipmentRecord{}, records...)
	o.state.RecordsLoaded = true
	o.state.Generation++
	o.state.Status = StatusReady
	o.mu.Unlock()

	o.logger.Info(logModule, "Dataset selected", map[string]interface{}{"upload_id": uploadId, "records": len(records)})
	o.publish(dctx, events.DatasetActivated, map[string]interface{}{"upload_id": uploadId, "source": "history"})
	return nil
}

// RefreshHistory replaces the history list. The active dataset is untouched.
func (o *Orchestrator) RefreshHistory(ctx context.Context) error {
	o.mu.Lock()
	tag := o.bump(slotHistory)
	o.mu.Unlock()

	return o.applyHistory(ctx, tag)
}

func (o *Orchestrator) applyHistory(ctx context.Context, tag uint64) error {
	history, err := o.gateway.ListHistory(ctx)

	o.mu.Lock()
	if !o.current(slotHistory, tag) {
		o.mu.Unlock()
		return apperr.ErrSuperseded
	}
	if err != nil {
		o.mu.Unlock()
		o.logger.Warn(logModule, "History refresh failed", map[string]interface{}{"error": err.Error()})
		o.failed(ctx, "history", err, apperr.MessageOr(err, MsgHistoryFailed))
		return err
	}
	o.state.History = append([]model.UploadRecord{}, history...)
	o.state.HistoryLoaded = true
	o.mu.Unlock()

	o.publish(ctx, events.HistoryRefreshed, map[string]interface{}{"count": len(history)})
	return nil
}

// LoadLatest refreshes the history and opens its newest entry. It reports
// false when there is nothing to open.
func (o *Orchestrator) LoadLatest(ctx context.Context) (bool, error) {
	if err := o.RefreshHistory(ctx); err != nil {
		o.mu.Lock()
		o.state.Message = apperr.MessageOr(err, MsgHistoryFailed)
		o.mu.Unlock()
		return false, err
	}

	o.mu.Lock()
	if len(o.state.History) == 0 {
		o.mu.Unlock()
		return false, nil
	}
	latest := o.state.History[0].Id
	o.mu.Unlock()

	if err := o.SelectHistoryEntry(ctx, latest); err != nil {
		return false, err
	}
	return true, nil
}

func (o *Orchestrator) SetSearchTerm(term string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.SearchTerm = term
}

// FilteredRecords applies the search term to the active records.
func (o *Orchestrator) FilteredRecords() []model.EquipmentRecord {
	o.mu.Lock()
	records, term, gen := o.state.Records, o.state.SearchTerm, o.state.Generation
	o.mu.Unlock()
	return o.memo.Filter(gen, records, term)
}

func (o *Orchestrator) PieSeries() (view.PieSeries, bool) {
	o.mu.Lock()
	var dist model.TypeDistribution
	if o.state.Summary != nil {
		dist = o.state.Summary.TypeDistribution
	}
	gen := o.state.Generation
	o.mu.Unlock()
	return o.memo.Pie(gen, dist)
}

func (o *Orchestrator) BarSeries() (view.BarSeries, bool) {
	o.mu.Lock()
	summary, gen := o.state.Summary, o.state.Generation
	o.mu.Unlock()
	return o.memo.Bar(gen, summary)
}

func (o *Orchestrator) Active() model.ActiveDataset {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Active
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := o.state
	snap.History = append([]model.UploadRecord(nil), o.state.History...)
	snap.Records = append([]model.EquipmentRecord(nil), o.state.Records...)
	if o.state.Summary != nil {
		s := *o.state.Summary
		s.TypeDistribution = s.TypeDistribution.Clone()
		snap.Summary = &s
	}
	return snap
}

// Reset drops all dataset state and discards every in-flight result.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	for s := slot(0); s < slotCount; s++ {
		o.bump(s)
	}
	if o.cancelDataset != nil {
		o.cancelDataset()
		o.cancelDataset = nil
	}
	if o.cancelRecords != nil {
		o.cancelRecords()
		o.cancelRecords = nil
	}
	gen := o.state.Generation + 1
	o.state = Snapshot{Status: StatusIdle, Generation: gen}
	o.mu.Unlock()

	o.memo.Reset()
	o.logger.Info(logModule, "State reset", nil)
	o.publish(context.Background(), events.StateReset, nil)
}

func (o *Orchestrator) failed(ctx context.Context, op string, err error, msg string) {
	o.logger.Error(logModule, "Operation failed", map[string]interface{}{"op": op, "error": err.Error()})
	o.publish(ctx, events.OperationFailed, map[string]interface{}{"op": op, "message": msg})
}

func (o *Orchestrator) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := o.publisher.Publish(context.WithoutCancel(ctx), events.NewEvent(eventType, data)); err != nil {
		o.logger.Warn(logModule, "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

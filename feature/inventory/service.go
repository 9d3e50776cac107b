package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"inventory-server/core/fieldbag"
	"inventory-server/core/reconcile"
	"inventory-server/feature/inventory/archive"
	"inventory-server/feature/inventory/dbinstance"
	"inventory-server/feature/inventory/device"
	"inventory-server/feature/inventory/models"
	"inventory-server/feature/inventory/protocol"
	"inventory-server/feature/inventory/remotemgmt"
	"inventory-server/feature/inventory/software"
)

// Service processes agent submissions: protocol negotiation, parsing,
// dispatch to the reconciler registry and response encoding.
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	conf     reconcile.Conf
	registry *reconcile.Registry
	archiver *archive.Archiver
}

// NewService wires the reconciler registry. The archiver may be nil when
// no object storage is configured.
func NewService(db *gorm.DB, logger *zap.Logger, conf reconcile.Conf, rules reconcile.RuleEngine, archiver *archive.Archiver) (*Service, error) {
	registry := reconcile.NewRegistry()
	reconcilers := []reconcile.Reconciler{
		software.New(rules),
		device.NewGraphicCard(),
		device.NewSoundCard(),
		dbinstance.New(),
		remotemgmt.New(),
	}
	for _, rec := range reconcilers {
		if err := registry.Register(rec); err != nil {
			return nil, err
		}
	}

	return &Service{
		db:       db,
		logger:   logger,
		conf:     conf,
		registry: registry,
		archiver: archiver,
	}, nil
}

// Result is one encoded agent-facing reply.
type Result struct {
	Body        []byte
	ContentType string
	Status      int
}

// HandleSubmission processes one raw agent request. Protocol and
// reconciliation failures are recovered into an encoded error reply;
// the returned Result is always sendable.
func (s *Service) HandleSubmission(ctx context.Context, body []byte, contentType, agentID string) Result {
	identified := agentID != ""

	codec, mode, err := protocol.Negotiate(contentType, s.conf.BrotliEnabled)
	if err != nil {
		return s.errorResult(protocol.CodecNone, modeOrLegacy(mode), err, identified)
	}

	req, err := protocol.ParseRequest(body, codec, mode)
	if err != nil {
		return s.errorResult(codec, modeOrLegacy(mode), err, identified)
	}

	log := s.logger.With(
		zap.String("deviceid", req.Document.DeviceID),
		zap.String("action", req.Document.Action))

	resp := protocol.NewResponse(req.Mode)
	switch req.Document.Action {
	case protocol.ActionProlog:
		resp.Add("response", "SEND")
		resp.Add("prolog_freq", s.conf.DefaultFrequency)
	case protocol.ActionContact, protocol.ActionNetDiscovery, protocol.ActionNetInventory:
		resp.Add("status", "ok")
		resp.Add("expiration", s.conf.DefaultFrequency)
	case protocol.ActionInventory:
		if err := s.runInventory(ctx, log, req.Document, agentID); err != nil {
			log.Error("inventory reconciliation failed", zap.Error(err))
			return s.errorResult(req.Codec, req.Mode, err, identified)
		}
		resp.Add("status", "ok")
		resp.Add("expiration", s.conf.DefaultFrequency)

		if s.conf.ArchiveSubmissions && s.archiver.Enabled() {
			s.archiver.Store(ctx, req.Document.DeviceID, req.Mode, req.Payload)
		}
	}

	encoded, respContentType, err := resp.Encode(req.Codec)
	if err != nil {
		log.Error("failed to encode response", zap.Error(err))
		return s.errorResult(protocol.CodecNone, req.Mode, err, identified)
	}
	return Result{Body: encoded, ContentType: respContentType, Status: resp.Status()}
}

// modeOrLegacy pins unresolved wire modes to the legacy XML encoding for
// error replies.
func modeOrLegacy(mode protocol.Mode) protocol.Mode {
	if mode == protocol.ModeAuto {
		return protocol.ModeXML
	}
	return mode
}

func (s *Service) errorResult(codec protocol.Codec, mode protocol.Mode, err error, identified bool) Result {
	resp := protocol.ErrorResponse(mode, err, identified, s.conf.DefaultFrequency)
	body, contentType, encErr := resp.Encode(codec)
	if encErr != nil {
		// Last resort: a bare uncompressed message.
		return Result{
			Body:        []byte(protocol.RedactPaths(err.Error())),
			ContentType: "text/plain",
			Status:      http.StatusInternalServerError,
		}
	}
	return Result{Body: body, ContentType: contentType, Status: resp.Status()}
}

// runInventory resolves the parent asset and pipes the submission
// through every enabled reconciler whose category was reported.
func (s *Service) runInventory(ctx context.Context, log *zap.Logger, doc *fieldbag.Document, agentID string) error {
	asset, err := s.resolveAsset(ctx, doc)
	if err != nil {
		return err
	}

	osID, err := s.resolveOS(ctx, doc)
	if err != nil {
		return err
	}

	rctx := &reconcile.Context{
		DB:       s.db.WithContext(ctx),
		Logger:   log,
		Conf:     s.conf,
		Itemtype: asset.Itemtype,
		ItemID:   asset.ID,
		EntityID: asset.EntityID,
		OSID:     osID,
		Partial:  doc.Partial,
		AgentID:  agentID,
	}

	for _, rec := range s.registry.All() {
		if !rec.CheckConf(s.conf) {
			continue
		}
		names := append([]string{rec.Category()}, rec.Aliases()...)
		if !doc.HasCategory(names...) {
			continue
		}

		items := rec.Prepare(rctx, doc.Items(names...))
		if err := rec.Handle(ctx, rctx, items); err != nil {
			return fmt.Errorf("category %s: %w", rec.Category(), err)
		}
	}
	return nil
}

// resolveAsset finds or creates the asset for the submitting device and
// stamps its contact time.
func (s *Service) resolveAsset(ctx context.Context, doc *fieldbag.Document) (*models.Asset, error) {
	tx := s.db.WithContext(ctx)

	var asset models.Asset
	err := tx.Where("deviceid = ?", doc.DeviceID).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		asset = models.Asset{
			DeviceID: doc.DeviceID,
			Name:     doc.DeviceID,
			Itemtype: "Computer",
		}
		err = tx.Create(&asset).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve asset %q: %w", doc.DeviceID, err)
	}

	now := time.Now()
	if err := tx.Model(&models.Asset{}).Where("id = ?", asset.ID).
		Update("last_contact", now).Error; err != nil {
		return nil, fmt.Errorf("failed to stamp asset contact: %w", err)
	}
	return &asset, nil
}

// resolveOS extracts the reported operating system, if any, and returns
// its id.
func (s *Service) resolveOS(ctx context.Context, doc *fieldbag.Document) (int64, error) {
	items := doc.Items("operatingsystem")
	if len(items) == 0 {
		return 0, nil
	}

	name := items[0].GetString("full_name")
	if name == "" {
		name = items[0].GetString("name")
	}
	return models.ResolveOperatingSystem(s.db.WithContext(ctx), name)
}

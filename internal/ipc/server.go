package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"cadenza/internal/catalog"
	"cadenza/internal/engine"
	"cadenza/internal/logging"
	"cadenza/internal/logs"
	"cadenza/internal/ramp"
)

// Server exposes engine control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	engine    *engine.Engine
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. logPath is
// the engine log file tailed by LogTail; empty disables tailing.
func NewServer(ctx context.Context, path string, eng *engine.Engine, logPath string, logger *slog.Logger) (*Server, error) {
	if eng == nil {
		return nil, errors.New("ipc server requires engine")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{engine: eng, logPath: logPath, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Cadenza", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		engine:    eng,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart cadenzad if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually"))
	}
}

type service struct {
	engine  *engine.Engine
	logPath string
	logger  *slog.Logger
	ctx     context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) store() *catalog.Store {
	return s.engine.Store()
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.engine.Status()
	resp.Running = true
	resp.PID = os.Getpid()
	resp.SessionID = status.SessionID
	resp.UserID = status.UserID
	resp.Beat = status.Beat
	resp.Tempo = status.Tempo
	resp.SampleRate = status.SampleRate
	resp.DroppedNotifications = status.DroppedNotifications
	resp.DatabasePath = s.store().Path()
	return nil
}

func (s *service) Login(req LoginRequest, resp *LoginResponse) error {
	s.engine.SetDirectLoginEmail(req.Email)
	s.engine.SetDirectLoginPW(req.Password)
	userID, err := s.engine.DirectLogin(s.ctx)
	if err != nil {
		return err
	}
	resp.UserID = userID
	s.log().Info("user logged in via IPC",
		logging.String(logging.FieldEventType, "direct_login"),
		logging.String("user_id", userID))
	return nil
}

func (s *service) ExperienceList(req ExperienceListRequest, resp *ExperienceListResponse) error {
	if req.Refresh {
		if err := s.engine.RefreshExperienceList(); err != nil {
			return err
		}
	}
	rows, err := s.store().Experiences(s.ctx)
	if err != nil {
		return err
	}
	counts, err := s.store().ThemeCounts(s.ctx)
	if err != nil {
		return err
	}
	byExperience := make(map[int64]catalog.ThemeCount, len(counts))
	for _, c := range counts {
		byExperience[c.ExperienceID] = c
	}
	resp.Items = make([]ExperienceItem, 0, len(rows))
	for _, row := range rows {
		item := experienceItem(row)
		if c, ok := byExperience[row.ID]; ok {
			item.ThemesTotal = c.Total
			item.ThemesDownloaded = c.Downloaded
		}
		resp.Items = append(resp.Items, item)
	}
	return nil
}

func (s *service) ExperienceDescribe(req ExperienceDescribeRequest, resp *ExperienceDescribeResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid experience id %d", req.ID)
	}
	if req.Refresh {
		if _, err := s.engine.ExperienceGet(req.ID, true); err != nil {
			return err
		}
	}
	row, err := s.store().Experience(s.ctx, req.ID)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("experience %d not cached", req.ID)
	}
	item := experienceItem(*row)
	count, err := s.store().ThemeCount(s.ctx, req.ID)
	if err != nil {
		return err
	}
	item.ThemesTotal = count.Total
	item.ThemesDownloaded = count.Downloaded
	resp.Item = item
	return nil
}

func (s *service) ArtistList(req ArtistListRequest, resp *ArtistListResponse) error {
	if req.Refresh {
		if err := s.engine.RefreshArtistList(); err != nil {
			return err
		}
	}
	rows, err := s.store().Artists(s.ctx)
	if err != nil {
		return err
	}
	resp.Items = make([]ArtistItem, 0, len(rows))
	for _, row := range rows {
		resp.Items = append(resp.Items, ArtistItem{ID: row.ID, Name: row.Name, Bio: row.Bio})
	}
	return nil
}

func (s *service) Sync(req SyncRequest, resp *SyncResponse) error {
	s.log().Debug("catalog sync requested", logging.Bool("metadata", req.Metadata))
	if req.Metadata {
		// Forced listing read also re-fetches metadata for cached experiences.
		if _, err := s.engine.ExperiencesGetAll(true); err != nil {
			return err
		}
	} else if err := s.engine.RefreshExperienceList(); err != nil {
		return err
	}
	if err := s.engine.RefreshArtistList(); err != nil {
		return err
	}
	experiences, err := s.store().Experiences(s.ctx)
	if err != nil {
		return err
	}
	artists, err := s.store().Artists(s.ctx)
	if err != nil {
		return err
	}
	resp.Experiences = len(experiences)
	resp.Artists = len(artists)
	s.log().Info("catalog synced",
		logging.String(logging.FieldEventType, "catalog_sync"),
		logging.Int("experience_count", resp.Experiences),
		logging.Int("artist_count", resp.Artists))
	return nil
}

func (s *service) PrefGet(req PrefGetRequest, resp *PrefGetResponse) error {
	value, err := s.engine.UserPreference(req.KeyPath)
	if err != nil {
		return err
	}
	resp.Value = value
	resp.Found = value != nil
	return nil
}

func (s *service) PrefSet(req PrefSetRequest, _ *PrefSetResponse) error {
	return s.engine.SetUserPreference(s.ctx, req.KeyPath, req.Value)
}

func (s *service) PrefClear(req PrefClearRequest, _ *PrefClearResponse) error {
	return s.engine.ClearUserPreference(s.ctx, req.KeyPath)
}

func (s *service) PrefSync(req PrefSyncRequest, _ *PrefSyncResponse) error {
	switch req.Direction {
	case "download":
		return s.engine.DownloadUserPreferences()
	case "upload":
		return s.engine.UploadUserPreferences()
	default:
		return fmt.Errorf("invalid sync direction %q", req.Direction)
	}
}

func (s *service) FaderRamp(req FaderRampRequest, _ *FaderRampResponse) error {
	return s.engine.RampUserFader(req.Track, req.Target, req.DurationBeats)
}

func (s *service) FaderValue(req FaderValueRequest, resp *FaderValueResponse) error {
	if req.Track < 0 || req.Track >= ramp.TrackCount {
		return fmt.Errorf("invalid track %d", req.Track)
	}
	value, err := s.engine.UserFaderValue(req.Track)
	if err != nil {
		return err
	}
	resp.Value = value
	return nil
}

func (s *service) SetTempo(req TempoRequest, _ *TempoResponse) error {
	if req.BPM <= 0 {
		return fmt.Errorf("invalid tempo %v", req.BPM)
	}
	s.engine.SetTempo(req.BPM)
	return nil
}

func (s *service) Clock(_ ClockRequest, resp *ClockResponse) error {
	resp.Beat = s.engine.Beat()
	resp.Tempo = s.engine.Tempo()
	return nil
}

func (s *service) DiskUsage(_ DiskUsageRequest, resp *DiskUsageResponse) error {
	usage, err := s.store().DiskUsage(s.ctx)
	if err != nil {
		return err
	}
	resp.DatabaseBytes = usage.DatabaseBytes
	resp.ThemeBytes = usage.ThemeBytes
	resp.PerExperience = usage.PerExperience
	return nil
}

func (s *service) Unload(req UnloadRequest, _ *UnloadResponse) error {
	if req.ExperienceID <= 0 {
		return fmt.Errorf("invalid experience id %d", req.ExperienceID)
	}
	s.log().Debug("unload requested", logging.Int64(logging.FieldExperienceID, req.ExperienceID))
	return s.store().Unload(s.ctx, req.ExperienceID)
}

func (s *service) CleanDB(_ CleanDBRequest, _ *CleanDBResponse) error {
	s.log().Debug("database vacuum requested")
	if err := s.store().Vacuum(s.ctx); err != nil {
		return err
	}
	s.log().Info("database compacted",
		logging.String(logging.FieldEventType, "clean_db"))
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	if s.logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, s.logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func experienceItem(row catalog.Experience) ExperienceItem {
	return ExperienceItem{
		ID:          row.ID,
		Title:       row.Title,
		ArtistID:    row.ArtistID,
		ImageURL:    row.ImageURL,
		HasMetadata: row.HasMetadata,
		PlayCount:   row.PlayCount,
	}
}

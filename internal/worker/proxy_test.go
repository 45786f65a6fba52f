package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cadenza/internal/catalog"
	"cadenza/internal/logging"
	"cadenza/internal/mother"
	"cadenza/internal/prefs"
	"cadenza/internal/scorekit"
	"cadenza/internal/testsupport"
	"cadenza/internal/worker"
)

type completion struct {
	id      int64
	payload any
	failure string
}

type recordingCompleter struct {
	done chan completion
}

func newRecordingCompleter() *recordingCompleter {
	return &recordingCompleter{done: make(chan completion, 16)}
}

func (r *recordingCompleter) Complete(id int64, payload any) {
	r.done <- completion{id: id, payload: payload}
}

func (r *recordingCompleter) Fail(id int64, reason string) {
	r.done <- completion{id: id, failure: reason}
}

func (r *recordingCompleter) wait(t *testing.T) completion {
	t.Helper()
	select {
	case c := <-r.done:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
		return completion{}
	}
}

type fakeMother struct {
	experiences []mother.ExperienceSummary
	artists     []mother.ArtistSummary
	details     map[int64]*mother.ExperienceDetail
	remotePrefs map[string]prefs.Tree
	uploaded    map[string]prefs.Tree
}

func (f *fakeMother) ExperienceList(context.Context) ([]mother.ExperienceSummary, error) {
	return f.experiences, nil
}

func (f *fakeMother) ArtistList(context.Context) ([]mother.ArtistSummary, error) {
	return f.artists, nil
}

func (f *fakeMother) ExperienceMetadata(_ context.Context, id int64) (*mother.ExperienceDetail, error) {
	detail, ok := f.details[id]
	if !ok {
		return nil, errors.New("no such experience")
	}
	return detail, nil
}

func (f *fakeMother) Preferences(_ context.Context, userID string) (prefs.Tree, error) {
	tree, ok := f.remotePrefs[userID]
	if !ok {
		return nil, prefs.ErrNoSuchUser
	}
	return tree, nil
}

func (f *fakeMother) PutPreferences(_ context.Context, userID string, tree prefs.Tree) error {
	if f.uploaded == nil {
		f.uploaded = make(map[string]prefs.Tree)
	}
	f.uploaded[userID] = tree
	return nil
}

func newProxy(t *testing.T, remote mother.Catalog, completer worker.Completer) (*worker.Proxy, *catalog.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runtime := scorekit.NewFakeRuntime(
		[]scorekit.ScoreSlider{{ID: 1, Name: "tension", Limits: [2]float64{0, 1}, TemporalScope: scorekit.ScopeSection}},
		[]scorekit.SystemSlider{{Name: "intensity", Limits: [2]float64{0, 10}}},
	)
	proxy := worker.NewProxy(cfg, logging.NewNop(), completer, remote, store, runtime, func() string { return "user-1" })
	if err := proxy.Start(context.Background()); err != nil {
		t.Fatalf("proxy.Start: %v", err)
	}
	t.Cleanup(proxy.Stop)
	return proxy, store
}

func TestSubmitBeforeStartFailsSynchronously(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	completer := newRecordingCompleter()
	proxy := worker.NewProxy(cfg, logging.NewNop(), completer, &fakeMother{}, store, scorekit.NewFakeRuntime(nil, nil), func() string { return "" })

	err := proxy.Submit(worker.Task{Target: worker.TargetDownload, RequestID: 1, Op: worker.OpDiskUsage})
	if !errors.Is(err, worker.ErrWorkerUnavailable) {
		t.Fatalf("expected ErrWorkerUnavailable, got %v", err)
	}

	// The failed submit must not produce a notification.
	select {
	case c := <-completer.done:
		t.Fatalf("unexpected completion after failed submit: %#v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCacheExperienceListCompletesWithTrue(t *testing.T) {
	remote := &fakeMother{
		experiences: []mother.ExperienceSummary{
			{ID: 228, Title: "Deep Focus", ArtistID: 4},
			{ID: 301, Title: "Night Drive", ArtistID: 7},
		},
	}
	completer := newRecordingCompleter()
	proxy, store := newProxy(t, remote, completer)

	err := proxy.Submit(worker.Task{Target: worker.TargetDownload, RequestID: 11, Op: worker.OpCacheExperienceList})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	c := completer.wait(t)
	if c.id != 11 || c.failure != "" {
		t.Fatalf("unexpected completion: %#v", c)
	}
	if c.payload != true {
		t.Fatalf("expected result true, got %#v", c.payload)
	}

	cached, err := store.Experiences(context.Background())
	if err != nil {
		t.Fatalf("Experiences failed: %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("expected 2 cached rows, got %d", len(cached))
	}
}

func TestCacheExperienceMetadataStoresThemes(t *testing.T) {
	remote := &fakeMother{
		details: map[int64]*mother.ExperienceDetail{
			228: {
				ExperienceSummary: mother.ExperienceSummary{ID: 228, Title: "Deep Focus", ArtistID: 4},
				Themes: []mother.ThemeSummary{
					{ID: 1, Name: "Dawn", SizeBytes: 1024},
					{ID: 2, Name: "Dusk", SizeBytes: 2048},
				},
				Raw: []byte(`{"id":228}`),
			},
		},
	}
	completer := newRecordingCompleter()
	proxy, store := newProxy(t, remote, completer)

	err := proxy.Submit(worker.Task{
		Target:    worker.TargetDownload,
		RequestID: 12,
		Op:        worker.OpCacheExperienceMetadata,
		Args:      worker.Args{ExperienceID: 228},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if c := completer.wait(t); c.failure != "" {
		t.Fatalf("metadata fetch failed: %s", c.failure)
	}

	ctx := context.Background()
	cached, err := store.MetadataCached(ctx, 228)
	if err != nil || !cached {
		t.Fatalf("expected metadata cached, got %v %v", cached, err)
	}
	tc, err := store.ThemeCount(ctx, 228)
	if err != nil {
		t.Fatalf("ThemeCount failed: %v", err)
	}
	if tc.Total != 2 {
		t.Fatalf("expected 2 themes, got %d", tc.Total)
	}
}

func TestArtistGetReturnsCachedBio(t *testing.T) {
	remote := &fakeMother{
		artists: []mother.ArtistSummary{
			{ID: 4, Name: "Aria", Bio: "ambient composer"},
			{ID: 7, Name: "Nocturne"},
		},
	}
	completer := newRecordingCompleter()
	proxy, store := newProxy(t, remote, completer)

	err := proxy.Submit(worker.Task{Target: worker.TargetDownload, RequestID: 16, Op: worker.OpCacheArtistList})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if c := completer.wait(t); c.failure != "" {
		t.Fatalf("artist list cache failed: %s", c.failure)
	}

	cached, err := store.Artist(context.Background(), 4)
	if err != nil || cached == nil {
		t.Fatalf("expected cached artist, got %#v %v", cached, err)
	}
	if cached.Bio != "ambient composer" {
		t.Fatalf("bio not persisted: %q", cached.Bio)
	}

	// The artist id travels in its own field, distinct from experience ids.
	err = proxy.Submit(worker.Task{
		Target:    worker.TargetDownload,
		RequestID: 17,
		Op:        worker.OpArtistGet,
		Args:      worker.Args{ArtistID: 4},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	c := completer.wait(t)
	if c.failure != "" {
		t.Fatalf("artist get failed: %s", c.failure)
	}
	payload, err := json.Marshal(c.payload)
	if err != nil {
		t.Fatalf("payload not JSON-encodable: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unexpected payload shape: %v", err)
	}
	if decoded["id"] != float64(4) || decoded["bio"] != "ambient composer" {
		t.Fatalf("unexpected artist payload: %#v", decoded)
	}
}

func TestUnknownOpFailsRequest(t *testing.T) {
	completer := newRecordingCompleter()
	proxy, _ := newProxy(t, &fakeMother{}, completer)

	err := proxy.Submit(worker.Task{Target: worker.TargetDownload, RequestID: 13, Op: worker.Op("bogus")})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	c := completer.wait(t)
	if c.id != 13 || c.failure == "" {
		t.Fatalf("expected failure completion, got %#v", c)
	}
}

func TestDownloadPreferencesMergesLocalWins(t *testing.T) {
	remote := &fakeMother{
		remotePrefs: map[string]prefs.Tree{
			"user-1": {
				"volume": 0.3,
				"theme":  "dark",
			},
		},
	}
	completer := newRecordingCompleter()
	proxy, store := newProxy(t, remote, completer)

	ctx := context.Background()
	local := prefs.Tree{"volume": 0.9}
	if err := store.SavePreferences(ctx, "user-1", local); err != nil {
		t.Fatalf("SavePreferences failed: %v", err)
	}

	err := proxy.Submit(worker.Task{Target: worker.TargetDownload, RequestID: 14, Op: worker.OpDownloadPreferences})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if c := completer.wait(t); c.failure != "" || c.payload != true {
		t.Fatalf("unexpected completion: %#v", c)
	}

	merged, err := store.Preferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("Preferences failed: %v", err)
	}
	want := prefs.Tree{"volume": 0.9, "theme": "dark"}
	if !prefs.Equal(want, merged) {
		t.Fatalf("merge mismatch: got %#v", merged)
	}
}

func TestUploadPreferencesWritesMergedRemote(t *testing.T) {
	remote := &fakeMother{
		remotePrefs: map[string]prefs.Tree{
			"user-1": {"theme": "dark"},
		},
	}
	completer := newRecordingCompleter()
	proxy, store := newProxy(t, remote, completer)

	ctx := context.Background()
	if err := store.SavePreferences(ctx, "user-1", prefs.Tree{"volume": 0.9}); err != nil {
		t.Fatalf("SavePreferences failed: %v", err)
	}

	err := proxy.Submit(worker.Task{Target: worker.TargetDownload, RequestID: 15, Op: worker.OpUploadPreferences})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if c := completer.wait(t); c.failure != "" {
		t.Fatalf("upload failed: %s", c.failure)
	}

	want := prefs.Tree{"volume": 0.9, "theme": "dark"}
	if !prefs.Equal(want, remote.uploaded["user-1"]) {
		t.Fatalf("uploaded document mismatch: %#v", remote.uploaded["user-1"])
	}
}

func TestPlayWorkerAnswersSliderQueries(t *testing.T) {
	completer := newRecordingCompleter()
	proxy, _ := newProxy(t, &fakeMother{}, completer)

	err := proxy.Submit(worker.Task{Target: worker.TargetPlay, RequestID: 21, Op: worker.OpScoreSliders})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	c := completer.wait(t)
	if c.failure != "" {
		t.Fatalf("slider list failed: %s", c.failure)
	}
	sliders, ok := c.payload.([]scorekit.ScoreSlider)
	if !ok || len(sliders) != 1 || sliders[0].Name != "tension" {
		t.Fatalf("unexpected slider payload: %#v", c.payload)
	}

	// Fire-and-forget set, then read back.
	err = proxy.Submit(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpSetScoreSliderValue,
		Args:   worker.Args{SliderID: 1, Value: 0.75},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	err = proxy.Submit(worker.Task{
		Target:    worker.TargetPlay,
		RequestID: 22,
		Op:        worker.OpScoreSliderValue,
		Args:      worker.Args{SliderID: 1},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	c = completer.wait(t)
	value, ok := c.payload.(scorekit.SliderValue)
	if !ok || value.Value != 0.75 {
		t.Fatalf("unexpected slider value: %#v", c.payload)
	}
}

func TestOpTagsCoverEveryReplyingOp(t *testing.T) {
	replying := []worker.Op{
		worker.OpCacheExperienceList, worker.OpCacheArtistList, worker.OpCacheExperienceMetadata,
		worker.OpExperiencesGetAll, worker.OpExperienceGet, worker.OpArtistsGetAll, worker.OpArtistGet,
		worker.OpLocalThemeCount, worker.OpLocalThemeCounts, worker.OpPlayCount,
		worker.OpMetadataIsCached, worker.OpDiskUsage, worker.OpUnloadExperience, worker.OpCleanDB,
		worker.OpDownloadPreferences, worker.OpUploadPreferences, worker.OpUserPreference,
		worker.OpScoreSliders, worker.OpScoreSliderValue, worker.OpSystemSliders,
		worker.OpSystemSliderValue, worker.OpPlayingThemes, worker.OpPlayingSection,
		worker.OpPlayingExperience,
	}
	for _, op := range replying {
		if len(op.Tags()) == 0 {
			t.Errorf("op %s has no terminal tags", op)
		}
	}

	fireAndForget := []worker.Op{
		worker.OpCuePlayback, worker.OpShuffle, worker.OpShuffleAll,
		worker.OpSetScoreSliderValue, worker.OpSetSystemSliderValue,
		worker.OpScoreThumbsUp, worker.OpOverrideNextSection,
	}
	for _, op := range fireAndForget {
		if op.Tags() != nil {
			t.Errorf("op %s should not reply but has tags %v", op, op.Tags())
		}
	}
}

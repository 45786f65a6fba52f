// Package scorekit defines the collaborator surface the play worker queries:
// score and system sliders, currently-playing state, shuffle, thumbs events
// and section overrides. The generation engine implements Runtime; tests and
// detached daemons use FakeRuntime.
package scorekit

// Package evergreen renders an interactive 3D holiday tree of particles for
// [Ebitengine], driven by hand gestures from a camera.
//
// A scene holds a few thousand decorations and dust specks plus any number
// of photo particles. The particles live in one of three modes:
//
//   - TREE: particles settle onto a conical spiral.
//   - SCATTER: particles drift outward from their spawn position.
//   - FOCUS: one photo is pulled in front of the camera and enlarged.
//
// # Quick start
//
// [NewSession] builds the scene from a [Config]. [Run] opens a window,
// starts gesture input, and blocks until the window closes:
//
//	cfg := evergreen.DefaultConfig()
//	s, err := evergreen.NewSession(evergreen.Options{Config: &cfg})
//	if err != nil {
//		return err
//	}
//	return evergreen.Run(ctx, s, nil)
//
// For full control, drive [Session.Update] and [Session.Draw] from your own
// [ebiten.Game], or wrap the session with [NewGame].
//
// # Gestures
//
// A [Capture] supplies camera frames and a [Detector] turns them into
// [HandSample] landmarks. The [Classifier] maps each sample to a [Signal]:
// a pinch selects FOCUS, a fist selects TREE, and an open hand selects
// SCATTER. The palm position steers the group rotation. When gesture input
// cannot start the scene keeps running and the mouse rotates it instead.
// The landmark subpackage provides a WebSocket detector.
//
// # Photos
//
// Photos arrive from dropped files, [Session.LoadPhotos], or an
// [ImageService] via [Session.RequestGeneration] and [Session.RequestEdit].
// Background work posts decoded photos to a [PhotoInbox]; the frame loop
// drains it and appends photo particles after the motion pass. The genai
// subpackage implements ImageService over the Gemini image API.
//
// # Events and metrics
//
// Mode transitions and new photos are published as [ModeChangedEvent] and
// [PhotoAddedEvent] in the session's [donburi] world and delivered once per
// frame. [Metrics] exposes Prometheus collectors for frames, transitions,
// photos, and image requests.
//
// [Ebitengine]: https://ebitengine.org
// [donburi]: https://github.com/yohamta/donburi
package evergreen

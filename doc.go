// Package langid identifies the natural language of a piece of text.
//
// A model is loaded once with Initialize, which returns an opaque Handle.
// Detect and DetectLanguage classify text against that model, and Release
// retires the handle. Handles are never reused, so a released handle keeps
// failing with ErrHandleReleased instead of reaching another model.
//
//	h, _, err := langid.Initialize("models/default")
//	if err != nil {
//		return err
//	}
//	defer langid.Release(h)
//	code, err := langid.DetectLanguage(h, "Der schnelle braune Fuchs")
//
// Detection is deterministic: the same model and text always produce the
// same code and confidence. Text that no language scores well on yields
// the code "und" and is not an error.
package langid

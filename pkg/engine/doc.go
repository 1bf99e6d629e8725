// Package engine is the host-facing entry point. An Engine runs the required,
// component and schema passes over a form State: the whole form
// (ValidateForm), one repeating group or group row (ValidateGroup) or a
// single instance (ValidateComponent). It also maps server-side issues onto
// the rendered pages (MapServerIssues).
//
// A Store keeps the current result of one form and applies full results,
// partial results and row deletions strictly in call order.
//
//	e := engine.New(engine.WithCache(cache), engine.WithLogger(logger))
//	res, err := e.ValidateForm(ctx, state)
//	if err != nil {
//		return err
//	}
//	store.Replace(res)
package engine

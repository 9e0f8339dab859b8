// Package tmvalidate validates the regexes of a TextMate grammar.
//
// A Validator extracts every regex of a grammar (see package grammar), asks
// the regex engine from its oracle.Loader to compile each one, and returns a
// Result in document order:
//
//	v := tmvalidate.New(oracle.Shared(oracle.DefaultEngine()))
//	res, err := v.ValidateGrammar(ctx, grammar.FromPath("syntaxes/x.tmLanguage.json"))
//	if err != nil {
//		// *grammar.SourceError or *oracle.EngineInitError
//	}
//	if res.Failed() {
//		for _, e := range res.Invalid() {
//			fmt.Println(e.Location, e.Message)
//		}
//	}
//
// A regex the engine rejects is never an error: it is an Entry whose Outcome
// failed. A grammar without regexes yields an empty Result, which passes.
package tmvalidate

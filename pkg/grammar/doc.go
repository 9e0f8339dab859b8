// Package grammar decodes TextMate grammars and finds the regexes in them.
//
// Documents are decoded into an ordered tree (Object, Array and scalars) so
// that extraction can follow the order in which members were written. Extract
// walks the tree rule by rule and reports each regex under a "match", "begin",
// "end" or "while" key together with its Path:
//
//	doc, err := grammar.FromPath("syntaxes/x.tmLanguage.json").Load()
//	if err != nil {
//		return err
//	}
//	for _, lr := range grammar.Extract(doc) {
//		fmt.Println(lr.Location, lr.Regex) // patterns[0].match \b(if|else)\b
//	}
//
// Members whose value does not have the expected shape are skipped. Include
// references are not followed.
package grammar

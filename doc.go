// Package confx resolves declared configuration entries from layered
// string-keyed sources, coerces raw input into typed values, and
// aggregates validation failures into one report.
//
// # Overview
//
// confx removes repeated environment-variable parsing from application
// startup paths. Each configuration constant is declared once with its
// source variable, type descriptor, requiredness, default, and secrecy;
// declaration eagerly resolves the entry against the current snapshot
// and yields a live handle. Failed entries do not halt anything until
// Validate is checked, so one validation pass surfaces every problem at
// once instead of one-at-a-time.
//
// # Features
//
//   - Layered lookup: override map wins over environment, then default
//   - Primitive coercion (string, int, double, keyword, bool) and
//     structured payloads in two grammars (JSON literal, YAML block)
//   - Typed override injection with shape conformance for structured types
//   - Insertion-ordered registry with atomic per-entry re-resolution
//   - Aggregate multi-error validation and a secret-redacting report
//
// # Usage
//
//	reg, err := confx.New(ctx, confx.Options{Logger: logger})
//	if err != nil { panic(err) }
//
//	port := reg.MustDeclare(confx.Spec{
//		Name:       "port",
//		Var:        "HTTP_PORT",
//		Descriptor: confx.Int,
//		Default:    int64(8080),
//		Info:       "listen port",
//	})
//
//	if err := reg.Validate(); err != nil {
//		logger.Error(err, "configuration invalid")
//		os.Exit(1)
//	}
//	fmt.Println(port.Value().(int64))
//
// Development tooling can replace the override layer at runtime:
//
//	reg.SetOverride(map[string]any{"HTTP_PORT": 9090})
//
// # Concurrency
//
// A Registry is safe for concurrent declaration, re-resolution, and
// reading. Re-resolution replaces each entry's outcome wholesale, so
// readers never observe a half-updated entry.
//
// # Stability
//
// The Show output format (one line per entry) is a snapshot-testable
// contract; see Registry.Show.
package confx

// Package bindery is the Composition Root for the Bindery application.
//
// It connects the core composition logic (Domain Layer) with the filesystem
// adapters (Persistence Layer) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Bindery treats a catalog of configuration bundles as modular building
// blocks for a workspace. Each bundle contributes a Markdown document,
// reusable artifacts (agents, commands, hooks), and a settings object; the
// composer stitches a selection of bundles into a single coherent output,
// resolving section and artifact collisions by priority.
//
// Features:
//
//   - **Hexagonal Architecture**: Core composition logic is isolated from storage details.
//   - **Priority Merging**: Deterministic section and artifact resolution across bundles.
//   - **Fence Aware**: Markdown headings inside code fences never split sections.
//   - **Catalog Index**: Cached descriptor scan with optional live re-indexing via fsnotify.
//   - **Compatibility Checks**: Dependency and conflict validation before composition.
//   - **Atomic Output (FS + Git)**: Temp-file writes with backups and optional versioning.
//
// Usage:
//
//	// Build a composer with functional options
//	composer, err := bindery.New(ctx, "./catalog",
//		bindery.WithLenient(true),
//		bindery.WithLogger(logger),
//	)
//
//	// Compose a selection of bundles
//	result, err := composer.Compose(ctx, []string{"nextjs", "tailwind"})
package bindery

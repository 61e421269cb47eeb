// Package internal contains the implementation packages of the multitenancy
// CLI.
//
// # Package Organization
//
// Packages are layered bottom-up; each only imports packages above it in
// this list:
//
//   - errors: ThemeError, naming and conflict errors, discovery collector
//   - logging: slog-backed structured logger and operation timing
//   - namespace: hierarchical namespaces, one claim per theme directory
//   - host: the host application the themes are wired into
//   - theme: descriptors, slugs, engines and Bootstrap
//   - registry: memoized discovery of the themes root
//   - controller: view path and template prefix resolution for controllers
//   - watcher: debounced fsnotify updaters for development reloads
//   - importmap: pin files, per-theme scopes and rendered tags
//   - integrations: fixtures, spec paths, Tailwind and import-map steps
//   - routes: chi mounting of theme engines
//   - pipeline: the two lifecycle phases that run the integrations
//   - config: viper configuration and host construction
//
// # Lifecycle
//
// Discovery and bootstrap happen before host configuration; import maps and
// stylesheet directories are prepared after the host has initialized. The
// pipeline enforces that order and runs each phase at most once.
package internal

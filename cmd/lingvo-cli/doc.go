// Command lingvo-cli orders translations and browses translation history
// on a lingvo translation service.
//
// Usage:
//
//	lingvo-cli login --username ann
//	lingvo-cli order --from en --to uk "Good morning"
//	lingvo-cli translations list --source-lang en --sort created_at
//	lingvo-cli stats --date-from 2024-01-01 -o json
//	lingvo-cli shell
//
// Configuration is read from ~/.lingvo/cli.yaml and LINGVO_* variables.
package main

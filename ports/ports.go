// Package ports defines the interfaces between the benchmark core and
// external collaborators.
package ports

import "context"

// MethodRunner invokes one DE-analysis method on a written count file
// and returns the path of the method's output table. Implementations
// wrap external tools; the core only depends on the file formats.
type MethodRunner interface {
	Run(ctx context.Context, method, countPath string) (outputPath string, err error)
}

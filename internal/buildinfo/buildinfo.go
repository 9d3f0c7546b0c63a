// Package buildinfo reports build metadata injected at link time, e.g.
//
//	go build -ldflags "-X github.com/dmitrijs2005/genpass/internal/buildinfo.buildVersion=v1.0.0"
package buildinfo

import (
	"cmp"
	"fmt"
	"io"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const notAvailable = "N/A"

// PrintBuildData writes the version, date and commit to w. Values not set at
// link time print as N/A.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", cmp.Or(buildVersion, notAvailable))
	fmt.Fprintf(w, "Build date: %s\n", cmp.Or(buildDate, notAvailable))
	fmt.Fprintf(w, "Build commit: %s\n", cmp.Or(buildCommit, notAvailable))
}

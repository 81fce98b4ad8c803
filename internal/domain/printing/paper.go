package printing

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/localprint/bridge/internal/domain/shared"
)

// PrinterCapabilities is what the spool adapter learns about an installed
// printer: whether it has a duplex unit and which media names its driver
// enumerates. Papers holds every PageSize choice the driver offers, standard
// kinds ("A3", "A4", "Letter") and custom names ("A3 Plus") alike.
type PrinterCapabilities struct {
	Name   string
	Duplex bool
	Papers []string
}

// ResolvePaper picks the concrete media name for the requested page size.
// Standard kinds win: an exact (case-insensitive) match on the kind name is
// taken first. Failing that, custom names are searched with a case-folded
// substring match, so a driver that only offers "A3 Plus" still serves an A3
// request. No match at all is an error naming the missing size.
func ResolvePaper(caps *PrinterCapabilities, size PageSize) (string, error) {
	kind := size.String()

	for _, paper := range caps.Papers {
		if strings.EqualFold(paper, kind) {
			return paper, nil
		}
	}

	fold := cases.Fold()
	folded := fold.String(kind)
	for _, paper := range caps.Papers {
		if strings.Contains(fold.String(paper), folded) {
			return paper, nil
		}
	}

	return "", shared.NewDomainError("PAPER_UNSUPPORTED",
		fmt.Sprintf("printer does not support %s", kind))
}

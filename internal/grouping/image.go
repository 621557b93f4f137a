package grouping

import "gtr/internal/domain"

// Image identifies the outcome icon shown next to a node
type Image int

const (
	ImageInit Image = iota
	ImageSuccess
	ImageFailure
	ImageWarning
	ImageIgnored
	ImageInconclusive
)

// severity ranks images; the highest rank wins when aggregating.
// Declaration order of the constants carries no meaning.
var severity = map[Image]int{
	ImageInit:         0,
	ImageSuccess:      1,
	ImageInconclusive: 2,
	ImageIgnored:      3,
	ImageWarning:      4,
	ImageFailure:      5,
}

// WorseThan reports whether i outranks other
func (i Image) WorseThan(other Image) bool {
	return severity[i] > severity[other]
}

// Worst returns the more severe of two images
func Worst(a, b Image) Image {
	if b.WorseThan(a) {
		return b
	}
	return a
}

func (i Image) String() string {
	switch i {
	case ImageInit:
		return "init"
	case ImageSuccess:
		return "success"
	case ImageFailure:
		return "failure"
	case ImageWarning:
		return "warning"
	case ImageIgnored:
		return "ignored"
	case ImageInconclusive:
		return "inconclusive"
	}
	return "unknown"
}

// ImageFor returns the image of a single result; nil means not run
func ImageFor(result *domain.TestResult) Image {
	if result == nil {
		return ImageInit
	}
	switch result.Status {
	case domain.StatusPassed:
		return ImageSuccess
	case domain.StatusFailed:
		return ImageFailure
	case domain.StatusWarning:
		return ImageWarning
	case domain.StatusSkipped:
		return ImageIgnored
	case domain.StatusInconclusive:
		return ImageInconclusive
	}
	return ImageInit
}

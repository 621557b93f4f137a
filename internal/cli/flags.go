package cli

import "gtr/internal/config"

// Flags holds command-line flags
type Flags struct {
	ProjectPath          string
	ConfigFile           string
	Processors           int
	Migrate              bool
	NoFresh              bool
	TestPath             string
	NameFilter           string
	TestCases            bool
	FailFast             bool
	GroupBy              string
	NoAncestorCategories bool
	ExcludeGroups        []string
	NoTUI                bool
	LogFile              string
	LogLevel             string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath:          f.ProjectPath,
		ConfigFile:           f.ConfigFile,
		Processors:           f.Processors,
		Migrate:              f.Migrate,
		NoFresh:              f.NoFresh,
		TestPath:             f.TestPath,
		NameFilter:           f.NameFilter,
		TestCases:            f.TestCases,
		FailFast:             f.FailFast,
		GroupBy:              f.GroupBy,
		NoAncestorCategories: f.NoAncestorCategories,
		ExcludeGroups:        f.ExcludeGroups,
		NoTUI:                f.NoTUI,
		LogFile:              f.LogFile,
		LogLevel:             f.LogLevel,
	}
}

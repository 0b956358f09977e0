// Package flags provides Cobra/pflag helpers for yes/no toggle flags and validated choice flags.
package flags

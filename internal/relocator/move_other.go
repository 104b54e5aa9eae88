//go:build !linux

package relocator

func renameNoReplace(src, dst string) error {
	return errNoReplaceUnsupported
}

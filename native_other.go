//go:build !(linux || darwin)

package fdkaac

func loadNative(string) (callTable, error) {
	return nil, ErrUnsupportedPlatform
}

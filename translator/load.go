package translator

import (
	"os"

	"github.com/lookbusy1344/sleigh-lift/lifterror"
	"github.com/lookbusy1344/sleigh-lift/sleighxml"
)

// LoadFromFile reads and deserialises the specification at path, then
// wires it into a Translator for the named architecture/compiler
// conventions. Per the TranslatorError contract, a file I/O failure
// reports ParseFile and a malformed document reports DeserialiseFile.
func LoadFromFile(path, pcRegister string, arch ArchitectureDef, conventions map[string]CompilerConvention) (*Translator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &lifterror.TranslatorError{Kind: lifterror.ParseFile, Path: path, Err: err}
	}
	defer f.Close()

	prog, err := sleighxml.Load(f)
	if err != nil {
		return nil, &lifterror.TranslatorError{Kind: lifterror.DeserialiseFile, Path: path, Err: err}
	}
	return New(prog, pcRegister, arch, conventions, prog.UniqueBase, prog.UniqueMask), nil
}

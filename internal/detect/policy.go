package detect

import "fmt"

// MismatchPolicy decides what happens when content and extension disagree
type MismatchPolicy string

const (
	MismatchSignature MismatchPolicy = "signature"
	MismatchExtension MismatchPolicy = "extension"
	MismatchManual    MismatchPolicy = "manual"
	MismatchSkip      MismatchPolicy = "skip"
)

// BinaryPolicy decides what happens to executables and opaque binary blobs
type BinaryPolicy string

const (
	BinaryProcess BinaryPolicy = "process"
	BinarySkip    BinaryPolicy = "skip"
)

// ParseMismatchPolicy validates a configured mismatch policy
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch p := MismatchPolicy(s); p {
	case MismatchSignature, MismatchExtension, MismatchManual, MismatchSkip:
		return p, nil
	case "":
		return MismatchManual, nil
	}
	return "", fmt.Errorf("unknown mismatch policy %q (want signature, extension, manual or skip)", s)
}

// ParseBinaryPolicy validates a configured binary policy
func ParseBinaryPolicy(s string) (BinaryPolicy, error) {
	switch p := BinaryPolicy(s); p {
	case BinaryProcess, BinarySkip:
		return p, nil
	case "":
		return BinaryProcess, nil
	}
	return "", fmt.Errorf("unknown binary policy %q (want process or skip)", s)
}

// Policy holds the non-interactive answers to the questions detection raises
type Policy struct {
	OnMismatch MismatchPolicy
	Binaries   BinaryPolicy
}

// DefaultPolicy sends mismatches to the manual category and processes binaries
func DefaultPolicy() Policy {
	return Policy{OnMismatch: MismatchManual, Binaries: BinaryProcess}
}

// Verdict is the outcome of Decide
type Verdict int

const (
	// VerdictClassify means classify by Decision.Extension
	VerdictClassify Verdict = iota
	// VerdictManual means route to the manual-check category
	VerdictManual
	// VerdictSkip means leave the file where it is
	VerdictSkip
)

// Decision is how a sniffed file should be classified
type Decision struct {
	Verdict   Verdict
	Extension string
	Signature Signature
	Mismatch  bool
	Reason    string
}

// plainTextExtensions hold free-form text. Text content that merely looks
// structured, such as a log line opening with "[", never conflicts with them.
var plainTextExtensions = map[string]struct{}{
	"txt": {}, "text": {}, "md": {}, "markdown": {}, "rst": {},
	"csv": {}, "tsv": {}, "log": {}, "ndjson": {}, "jsonl": {},
}

// Lookup reports the category an extension belongs to
type Lookup func(ext string) (string, bool)

// Decide combines the declared extension with the sniffed signature.
// A mismatch only counts when both extensions are known and land in
// different categories: jpeg vs jpg, or epub vs zip, is not a conflict.
func (p Policy) Decide(declared string, sig Signature, lookup Lookup) Decision {
	d := Decision{Verdict: VerdictClassify, Extension: declared, Signature: sig}

	if p.Binaries == BinarySkip && (sig.Executable || (!sig.Known() && sig.Binary)) {
		d.Verdict = VerdictSkip
		d.Reason = "binary file"
		return d
	}

	if !sig.Known() || sig.Extension == declared {
		return d
	}
	if _, ok := plainTextExtensions[declared]; ok && !sig.Binary {
		return d
	}

	declCategory, declOK := lookup(declared)
	sigCategory, sigOK := lookup(sig.Extension)

	switch {
	case declared == "" || (!declOK && sigOK):
		d.Extension = sig.Extension
		return d
	case !declOK || !sigOK || declCategory == sigCategory:
		return d
	}

	d.Mismatch = true
	d.Reason = fmt.Sprintf("content is .%s but extension is .%s", sig.Extension, declared)
	switch p.OnMismatch {
	case MismatchSignature:
		d.Extension = sig.Extension
	case MismatchExtension:
	case MismatchSkip:
		d.Verdict = VerdictSkip
	default:
		d.Verdict = VerdictManual
	}
	return d
}

package lint

const (
	// IOLinterIdentifier tags findings for assets that could not be opened or read.
	IOLinterIdentifier = "_io"
	// SourceLinterIdentifier tags findings raised about the asset source as a whole.
	SourceLinterIdentifier = "_source"
	// IssueTypeLinterFailed marks synthetic findings recording a linter fault.
	IssueTypeLinterFailed = "linter_failed"
	// IssueTypeUnreadableAsset marks synthetic findings recording an asset I/O fault.
	IssueTypeUnreadableAsset = "unreadable_asset"
	// IssueTypeNoAssets marks the synthetic finding raised when a source yields nothing.
	IssueTypeNoAssets = "no_images_found"
)

// Payload carries structured finding details. Values are primitives or string slices.
type Payload map[string]any

// Finding records one detected issue for one asset or a group of assets.
type Finding struct {
	linterIdentifier string
	asset            string
	relatedAssets    []string
	severity         Severity
	issueType        string
	message          string
	payload          Payload
}

// FindingDescriptor carries the attributes used to construct a Finding.
type FindingDescriptor struct {
	Linter        string
	Asset         string
	RelatedAssets []string
	Severity      Severity
	IssueType     string
	Message       string
	Payload       Payload
}

// NewFinding builds an immutable Finding, copying the related assets and payload.
func NewFinding(descriptor FindingDescriptor) Finding {
	return Finding{
		linterIdentifier: descriptor.Linter,
		asset:            descriptor.Asset,
		relatedAssets:    copyStrings(descriptor.RelatedAssets),
		severity:         descriptor.Severity,
		issueType:        descriptor.IssueType,
		message:          descriptor.Message,
		payload:          copyPayload(descriptor.Payload),
	}
}

// NewGroupFinding builds a Finding covering several assets. The first member becomes the primary asset.
func NewGroupFinding(descriptor FindingDescriptor, members []string) Finding {
	if len(members) > 0 {
		descriptor.Asset = members[0]
	}
	descriptor.RelatedAssets = members
	return NewFinding(descriptor)
}

// Linter returns the identifier of the linter that produced the finding.
func (finding Finding) Linter() string {
	return finding.linterIdentifier
}

// Asset returns the identity of the primary asset the finding refers to.
func (finding Finding) Asset() string {
	return finding.asset
}

// RelatedAssets returns every asset identity the finding covers, primary asset first.
func (finding Finding) RelatedAssets() []string {
	if len(finding.relatedAssets) == 0 {
		if len(finding.asset) == 0 {
			return nil
		}
		return []string{finding.asset}
	}
	return copyStrings(finding.relatedAssets)
}

// Severity returns the finding severity.
func (finding Finding) Severity() Severity {
	return finding.severity
}

// IssueType returns the short machine-readable issue code.
func (finding Finding) IssueType() string {
	return finding.issueType
}

// Message returns the human-readable description.
func (finding Finding) Message() string {
	return finding.message
}

// Payload returns a copy of the structured details.
func (finding Finding) Payload() Payload {
	return copyPayload(finding.payload)
}

// Record projects the finding onto exported fields for exporters.
func (finding Finding) Record() FindingRecord {
	return FindingRecord{
		Linter:        finding.linterIdentifier,
		Asset:         finding.asset,
		RelatedAssets: copyStrings(finding.relatedAssets),
		Severity:      finding.severity,
		IssueType:     finding.issueType,
		Message:       finding.message,
		Payload:       copyPayload(finding.payload),
	}
}

// FindingRecord is the exported projection of a Finding.
type FindingRecord struct {
	Linter        string   `json:"linter" yaml:"linter"`
	Asset         string   `json:"asset" yaml:"asset"`
	RelatedAssets []string `json:"related_assets,omitempty" yaml:"related_assets,omitempty"`
	Severity      Severity `json:"severity" yaml:"severity"`
	IssueType     string   `json:"issue_type" yaml:"issue_type"`
	Message       string   `json:"message" yaml:"message"`
	Payload       Payload  `json:"payload,omitempty" yaml:"payload,omitempty"`
}

func copyStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	duplicated := make([]string, len(values))
	copy(duplicated, values)
	return duplicated
}

func copyPayload(payload Payload) Payload {
	if len(payload) == 0 {
		return nil
	}
	duplicated := make(Payload, len(payload))
	for key, value := range payload {
		if stringValues, isStringSlice := value.([]string); isStringSlice {
			duplicated[key] = copyStrings(stringValues)
			continue
		}
		duplicated[key] = value
	}
	return duplicated
}

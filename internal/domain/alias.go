package domain

// DomainAlias maps a request domain onto the domain whose redirect rules apply.
type DomainAlias struct {
	SourceDomain string `json:"source_domain"`
	TargetDomain string `json:"target_domain"`
}

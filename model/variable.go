package model

// Role tags a tableau column with the kind of variable it represents.
type Role int

const (
	Original Role = iota
	Slack
	Surplus
	Artificial
)

func (r Role) String() string {
	switch r {
	case Original:
		return "original"
	case Slack:
		return "slack"
	case Surplus:
		return "surplus"
	case Artificial:
		return "artificial"
	default:
		return "unknown"
	}
}

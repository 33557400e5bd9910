package domain

// Policy names enforced by the router. PolicyAuthenticated only requires a
// valid token; named policies additionally require a claim type.
const (
	PolicyAuthenticated  = "authenticated"
	PolicyExcluirContato = "ExcluirContato"
)

// RequiredClaim maps a policy name to the claim type it requires. An empty
// result means the policy is satisfied by any valid token.
func RequiredClaim(policyName string) string {
	switch policyName {
	case PolicyExcluirContato:
		return "ExcluirContato"
	default:
		return ""
	}
}

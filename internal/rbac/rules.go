package rbac

// Default policy. Candidates take assessments and see their own
// records; recruiters run the pipeline; admin gets everything.
var RolePermissions = map[string][]string{
	"candidate": {
		"job:view",
		"assessment:view",
		"session:take",
		"response:view-own",
		"upload:answer",
	},
	"recruiter": {
		"job:*",
		"candidate:*",
		"assessment:*",
		"session:take", // preview in the builder
		"response:view-all",
		"response:review",
		"response:export",
		"upload:answer",
	},
	"admin": {
		"*", // everything
	},
}

package user

// test hooks for the external user_test package
var (
	NowFunc           = &nowFunc
	GenerateLoginCode = generateLoginCode
)

package email

const (
	subjectNewLeadFmt      = "Nuevo lead %s: %s"
	subjectCasePromotedFmt = "Caso %s abierto para %s"
)

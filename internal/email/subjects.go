package email

const subjectEscalationFmt = "[%s] Urgent %s conversation with %s"

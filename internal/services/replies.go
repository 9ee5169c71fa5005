package services

// Replies sent back to the chat channel.
const (
	ReplyUnauthorized     = "No estas autorizado para usar este servicio."
	ReplyRegisterFailed   = "Error al registrar el gasto. Intenta nuevamente."
	ReplyDeleteFailed     = "Error al eliminar el gasto"
	ReplyListFailed       = "Error al obtener tus gastos. Intenta nuevamente."
	ReplySummaryFailed    = "Error al generar el resumen. Intenta nuevamente."
	ReplyNothingToDelete  = "No tienes gastos para eliminar"
	ReplyNoExpenses       = "No tienes gastos registrados"
	ReplyBadSummary       = "Formato de resumen no valido. Usa: 'resumen hoy', 'resumen semana' o 'resumen 01-07 al 29-07'"
	ReplyAmountOutOfRange = "El monto %s esta fuera de rango. El maximo es %s."
	ReplyCategoryTooLong  = "La categoria es demasiado larga. El maximo es %d caracteres."

	replyNotUnderstood = "No entendi tu mensaje."
	replyHelpHeader    = "Comandos disponibles:"
	helpBody           = "Para registrar gastos:\n" +
		"- Comida 300\n" +
		"- Netflix 1500\n" +
		"- Transporte 50\n\n" +
		"Para ver resumenes:\n" +
		"- resumen hoy\n" +
		"- resumen semana\n" +
		"- resumen 01-07 al 29-07\n\n" +
		"Para gestionar gastos:\n" +
		"- mis gastos\n" +
		"- eliminar 3\n" +
		"- eliminar ultimo"
)

// HelpText is the reply to an explicit help request.
func HelpText() string {
	return replyHelpHeader + "\n\n" + helpBody
}

// UnrecognizedText is the reply to a message no grammar matched.
func UnrecognizedText() string {
	return replyNotUnderstood + "\n\n" + helpBody
}

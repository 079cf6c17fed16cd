package guardrails

// Fallback messages shown to the end user when the re-ask budget runs
// out. Keyed by the name of the first failing check; the raw model
// output is logged for audit and never returned.
var fallbacks = map[string]string{
	CheckMedical: "Bu konuda tıbbi bir değerlendirme yapamam. Sağlığınla ilgili endişelerin için " +
		"lütfen bir sağlık uzmanına başvur. Acil bir durumdaysan 112'yi arayabilirsin.",
	CheckLegalFinancial: "Hukuki veya finansal konularda yönlendirme yapamam. Bu tür kararlar için " +
		"lütfen yetkili bir profesyonelden destek al.",
	CheckHarmful: "Şu an zor bir dönemden geçiyor olabilirsin ve yalnız değilsin. Lütfen güvendiğin " +
		"biriyle konuş veya profesyonel destek al; acil durumlarda 112'yi ya da yerel kriz hattını arayabilirsin.",
	CheckEmpathy: "Sana şu anda yardımcı olamadım, bunun için üzgünüm. Sorunu biraz farklı bir " +
		"şekilde tekrar sorabilir misin?",
	CheckLength: "Yanıtı derli toplu bir şekilde oluşturamadım. Soruyu biraz daraltarak tekrar " +
		"dener misin?",
	CheckSchema: "Şu anda düzgün bir yanıt oluşturamıyorum. Lütfen biraz sonra tekrar dene.",
}

// genericFallback covers unclassified failures.
const genericFallback = "Şu anda bir yanıt oluşturamıyorum. Lütfen biraz sonra tekrar dene."

// Fallback returns the user-safe message for the given failed check
// name. Unknown names yield the generic try-again message.
func Fallback(check string) string {
	if msg, ok := fallbacks[check]; ok {
		return msg
	}
	return genericFallback
}

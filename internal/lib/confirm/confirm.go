// Package confirm задаёт способность подтверждения опасных операций.
// Удаление группы, шаблона или расписания выполняется только после
// положительного ответа, поэтому в сервисы внедряется функция-подтверждение,
// а тесты подставляют детерминированный ответ.
package confirm

// Func отвечает на вопрос "выполнять ли операцию".
type Func func(question string) bool

// Yes подтверждает любую операцию. Используется приложением:
// явное подтверждение уже получено на HTTP-границе (confirm=true).
func Yes(_ string) bool { return true }

// No отклоняет любую операцию.
func No(_ string) bool { return false }

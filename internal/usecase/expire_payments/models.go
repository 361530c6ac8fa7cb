package expire_payments

// DefaultBatchSize сколько просроченных бронирований обрабатывается за один проход
const DefaultBatchSize = 100

// Response итог одного прохода
type Response struct {
	Scanned int     // Найдено просроченных бронирований
	Expired int     // Из них отменено этим проходом
	Failed  int     // Не удалось отменить (будут повторены следующим проходом)
	IDs     []int64 // ID отмененных этим проходом бронирований
}

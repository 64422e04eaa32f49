// Package fuzztests houses Go fuzz harnesses for the formula pipeline
// (text -> tokens -> expression -> value). They guard against panics and
// hangs on arbitrary input.
//
// Назначение: прогонять произвольные строки через парсер, понижение и
// вычисление.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests

package timetable

import (
	"fmt"
	"strings"
)

// pageRow renders one row in the departure page's markup.
func pageRow(class, dep, depName, arr, arrName, cell string) string {
	return fmt.Sprintf(`
<tr class="company-data-%s hour-data">
  <td class="td-dep-arr">
    <p class="dep-time">%s<span class="dep-arr-airpot">%s</span></p>
    <p class="arr-time">%s<span class="dep-arr-airpot">%s</span></p>
  </td>
  <td class="td-required-time">%s</td>
</tr>`, class, dep, depName, arr, arrName, cell)
}

func page(rows ...string) string {
	return "<html><body><table>" + strings.Join(rows, "\n") + "</table></body></html>"
}
